package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/domain"
	"github.com/ticketdesk/ticket-bot/internal/events"
	"github.com/ticketdesk/ticket-bot/internal/observability"
	apperrors "github.com/ticketdesk/ticket-bot/pkg/util/errorutil"
)

const archiveAccess = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory

// TranscriptFileName names the archived transcript of ticketName closed at closedAt.
func TranscriptFileName(ticketName string, closedAt time.Time) string {
	return fmt.Sprintf("transcript-%s-%d.txt", ticketName, closedAt.UnixMilli())
}

// ArchiveTranscript creates a staff-only channel under the archive category
// and posts transcript into it as a text file.
func (s *TicketService) ArchiveTranscript(ctx context.Context, ticket *discordgo.Channel, transcript *domain.Transcript) (*discordgo.Channel, error) {
	ctx, span := s.tracer.Start(ctx, "TicketService.ArchiveTranscript",
		trace.WithAttributes(attribute.String("channel.id", ticket.ID)))
	defer span.End()

	category, err := s.platform.Channel(ctx, s.cfg.ArchiveCategoryID)
	if err != nil {
		return nil, apperrors.NewArchiveCategoryNotFound(s.cfg.ArchiveCategoryID, err)
	}
	if category.Type != discordgo.ChannelTypeGuildCategory {
		return nil, apperrors.NewArchiveCategoryNotFound(s.cfg.ArchiveCategoryID,
			fmt.Errorf("channel %s is not a category", category.ID))
	}

	guildID := ticket.GuildID
	if guildID == "" {
		guildID = category.GuildID
	}

	archive, err := s.platform.CreateChannel(ctx, guildID, discordgo.GuildChannelCreateData{
		Name:     "transcript-" + ticket.Name,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: category.ID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
			{ID: s.cfg.StaffRoleID, Type: discordgo.PermissionOverwriteTypeRole, Allow: archiveAccess},
			{ID: s.platform.BotUserID(), Type: discordgo.PermissionOverwriteTypeMember, Allow: archiveAccess},
		},
	})
	if err != nil {
		return nil, apperrors.NewArchivalFailed(err)
	}

	fileName := TranscriptFileName(ticket.Name, transcript.ClosedAt)
	summary := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title: "📄 Ticket Transcript",
			Description: fmt.Sprintf("**Ticket:** %s\n**Closed:** %s\n**Total Messages:** %d",
				ticket.Name, formatTranscriptTime(transcript.ClosedAt), transcript.MessageCount()),
			Color:     colorInfo,
			Footer:    &discordgo.MessageEmbedFooter{Text: s.cfg.BrandName},
			Timestamp: transcript.ClosedAt.UTC().Format(time.RFC3339),
		}},
		Files: []*discordgo.File{{
			Name:        fileName,
			ContentType: "text/plain; charset=utf-8",
			Reader:      strings.NewReader(transcript.Text),
		}},
	}
	if _, err := s.platform.SendMessage(ctx, archive.ID, summary); err != nil {
		return nil, apperrors.NewArchivalFailed(err)
	}

	s.metrics.Inc(observability.MetricTranscriptsArchived)
	s.logger.Info("transcript archived",
		zap.String("channel_id", ticket.ID),
		zap.String("archive_channel_id", archive.ID),
		zap.String("file", fileName),
		zap.Int("messages", transcript.MessageCount()))
	s.publish(ctx, events.Event{
		Type:      events.EventTranscriptArchived,
		GuildID:   guildID,
		ChannelID: ticket.ID,
		Payload: events.TranscriptArchivedPayload{
			ArchiveChannelID: archive.ID,
			FileName:         fileName,
			MessageCount:     transcript.MessageCount(),
		},
	})
	return archive, nil
}
