package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ticketdesk/ticket-bot/internal/domain"
	apperrors "github.com/ticketdesk/ticket-bot/pkg/util/errorutil"
)

const (
	transcriptRuleWidth = 60
	transcriptTimeFmt   = "2006-01-02 15:04:05 UTC"
	emptyContentMarker  = "[No text content]"
)

// GenerateTranscript reads the whole history of channel, oldest first, and
// renders it. Any read failure fails the whole transcript.
func (s *TicketService) GenerateTranscript(ctx context.Context, channel *discordgo.Channel) (*domain.Transcript, error) {
	ctx, span := s.tracer.Start(ctx, "TicketService.GenerateTranscript",
		trace.WithAttributes(attribute.String("channel.id", channel.ID)))
	defer span.End()

	messages, err := s.fetchHistory(ctx, channel.ID)
	if err != nil {
		return nil, apperrors.NewTranscriptGenerationFailed(channel.ID, err)
	}
	span.SetAttributes(attribute.Int("transcript.messages", len(messages)))

	transcript := &domain.Transcript{
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		CreatedAt:   channelCreatedAt(channel),
		ClosedAt:    s.clock.Now(),
		Entries:     make([]domain.TranscriptEntry, 0, len(messages)),
	}
	for _, msg := range messages {
		transcript.Entries = append(transcript.Entries, toTranscriptEntry(msg))
	}
	transcript.Text = RenderTranscript(transcript)
	return transcript, nil
}

// fetchHistory pages backwards from the newest message until a page comes
// back short, then returns the messages in chronological order.
func (s *TicketService) fetchHistory(ctx context.Context, channelID string) ([]*discordgo.Message, error) {
	pageSize := s.cfg.PageSize
	seen := make(map[string]struct{})
	var newestFirst []*discordgo.Message
	before := ""

	for {
		page, err := s.platform.ChannelMessages(ctx, channelID, pageSize, before)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, msg := range page {
			if _, dup := seen[msg.ID]; dup {
				continue
			}
			seen[msg.ID] = struct{}{}
			newestFirst = append(newestFirst, msg)
		}
		before = page[len(page)-1].ID
		if len(page) < pageSize {
			break
		}
	}

	for i, j := 0, len(newestFirst)-1; i < j; i, j = i+1, j-1 {
		newestFirst[i], newestFirst[j] = newestFirst[j], newestFirst[i]
	}
	return newestFirst, nil
}

// RenderTranscript produces the flat text record for t. The output depends
// only on t's fields.
func RenderTranscript(t *domain.Transcript) string {
	rule := strings.Repeat("=", transcriptRuleWidth)
	lines := []string{
		rule,
		"TICKET TRANSCRIPT: " + strings.ToUpper(t.ChannelName),
		rule,
		"Created: " + formatTranscriptTime(t.CreatedAt),
		"Closed: " + formatTranscriptTime(t.ClosedAt),
		"Ticket ID: " + t.ChannelID,
		rule,
		"",
	}

	for _, entry := range t.Entries {
		lines = append(lines, "["+formatTranscriptTime(entry.Timestamp)+"] "+entry.Author+":")
		if entry.Content == "" {
			lines = append(lines, emptyContentMarker)
		} else {
			lines = append(lines, entry.Content)
		}
		for _, att := range entry.Attachments {
			lines = append(lines, "  📎 Attachment: "+att.Name+" ("+att.URL+")")
		}
		for _, embed := range entry.Embeds {
			title := embed.Title
			if title == "" {
				title = "Untitled"
			}
			lines = append(lines, "  📋 Embed: "+title)
			if embed.Description != "" {
				lines = append(lines, "     "+embed.Description)
			}
		}
		lines = append(lines, "")
	}

	lines = append(lines, rule, "End of Transcript", rule)
	return strings.Join(lines, "\n")
}

func toTranscriptEntry(msg *discordgo.Message) domain.TranscriptEntry {
	entry := domain.TranscriptEntry{
		MessageID: msg.ID,
		Timestamp: msg.Timestamp,
		Author:    authorTag(msg.Author),
		Content:   msg.Content,
	}
	for _, att := range msg.Attachments {
		if att == nil {
			continue
		}
		entry.Attachments = append(entry.Attachments, domain.TranscriptAttachment{Name: att.Filename, URL: att.URL})
	}
	for _, embed := range msg.Embeds {
		if embed == nil {
			continue
		}
		entry.Embeds = append(entry.Embeds, domain.TranscriptEmbed{Title: embed.Title, Description: embed.Description})
	}
	return entry
}

func authorTag(user *discordgo.User) string {
	if user == nil {
		return "Unknown"
	}
	if user.Discriminator == "" || user.Discriminator == "0" {
		return user.Username
	}
	return user.Username + "#" + user.Discriminator
}

func channelCreatedAt(channel *discordgo.Channel) time.Time {
	created, err := discordgo.SnowflakeTimestamp(channel.ID)
	if err != nil {
		return time.Time{}
	}
	return created
}

func formatTranscriptTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(transcriptTimeFmt)
}
