package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/clock"
	"github.com/ticketdesk/ticket-bot/internal/domain"
	"github.com/ticketdesk/ticket-bot/internal/events"
	"github.com/ticketdesk/ticket-bot/internal/observability"
	apperrors "github.com/ticketdesk/ticket-bot/pkg/util/errorutil"
)

const deleteTimeout = 15 * time.Second

// ScheduledDeletion is the pending removal of a closed ticket channel.
type ScheduledDeletion struct {
	ChannelID string
	At        time.Time
	timer     *clock.Timer
}

// Cancel stops the deletion if it has not run yet.
func (d *ScheduledDeletion) Cancel() bool {
	if d == nil || d.timer == nil {
		return false
	}
	return d.timer.Stop()
}

// CloseResult reports what CloseTicket did.
type CloseResult struct {
	ArchiveChannel *discordgo.Channel
	Transcript     *domain.Transcript
	TranscriptErr  error
	Deletion       *ScheduledDeletion
}

// CloseTicket archives a transcript of channel when it can, posts a closing
// notice and schedules the channel for deletion after the grace delay. A
// failed transcript never prevents the close. It returns once the deletion
// is scheduled.
func (s *TicketService) CloseTicket(ctx context.Context, channel *discordgo.Channel, closer domain.Actor) (*CloseResult, error) {
	ctx, span := s.tracer.Start(ctx, "TicketService.CloseTicket",
		trace.WithAttributes(
			attribute.String("channel.id", channel.ID),
			attribute.String("user.id", closer.UserID)))
	defer span.End()

	result := &CloseResult{}
	transcript, err := s.GenerateTranscript(ctx, channel)
	if err == nil {
		result.Transcript = transcript
		result.ArchiveChannel, err = s.ArchiveTranscript(ctx, channel, transcript)
	}
	if err != nil {
		result.TranscriptErr = err
		s.metrics.Inc(observability.MetricArchiveFailures)
		s.logger.Error("transcript not archived; continuing with close",
			zap.String("channel_id", channel.ID),
			zap.Error(err))
	}

	if _, err := s.platform.SendMessage(ctx, channel.ID, s.closingNotice(closer.UserID, result.ArchiveChannel)); err != nil {
		s.logger.Warn("failed to post closing notice",
			zap.String("channel_id", channel.ID),
			zap.Error(err))
	}

	result.Deletion = s.scheduleDeletion(channel)

	s.metrics.Inc(observability.MetricTicketsClosed)
	s.logger.Info("ticket closed",
		zap.String("channel_id", channel.ID),
		zap.String("name", channel.Name),
		zap.String("closed_by", closer.UserID),
		zap.Time("delete_at", result.Deletion.At))

	payload := events.TicketClosedPayload{Name: channel.Name}
	if result.ArchiveChannel != nil {
		payload.ArchiveChannelID = result.ArchiveChannel.ID
	}
	if result.TranscriptErr != nil {
		payload.TranscriptError = apperrors.ToDomainError(result.TranscriptErr).Code
	}
	s.publish(ctx, events.Event{
		Type:      events.EventTicketClosed,
		GuildID:   channel.GuildID,
		ChannelID: channel.ID,
		ActorID:   closer.UserID,
		Payload:   payload,
	})

	return result, nil
}

// DeleteDelay is the grace period between the closing notice and deletion.
func (s *TicketService) DeleteDelay() time.Duration {
	return s.cfg.DeleteDelay
}

func (s *TicketService) scheduleDeletion(channel *discordgo.Channel) *ScheduledDeletion {
	deletion := &ScheduledDeletion{
		ChannelID: channel.ID,
		At:        s.clock.Now().Add(s.cfg.DeleteDelay),
	}
	deletion.timer = s.clock.AfterFunc(s.cfg.DeleteDelay, func() {
		s.deleteTicketChannel(channel)
	})
	return deletion
}

// deleteTicketChannel runs detached from the triggering interaction. A
// failed delete is logged and not retried.
func (s *TicketService) deleteTicketChannel(channel *discordgo.Channel) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()

	payload := events.TicketDeletedPayload{Name: channel.Name}
	if err := s.platform.DeleteChannel(ctx, channel.ID); err != nil {
		err = apperrors.NewDeletionFailed(channel.ID, err)
		s.metrics.Inc(observability.MetricDeletionFailures)
		s.logger.Error("failed to delete ticket channel",
			zap.String("channel_id", channel.ID),
			zap.Error(err))
		payload.Error = err.Error()
	} else {
		s.metrics.Inc(observability.MetricTicketsDeleted)
		if err := s.index.Delete(ctx, channel.ID); err != nil {
			s.logger.Warn("failed to remove ticket record",
				zap.String("channel_id", channel.ID),
				zap.Error(err))
		}
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketDeleted,
		GuildID:   channel.GuildID,
		ChannelID: channel.ID,
		Payload:   payload,
	})
}

func (s *TicketService) closingNotice(closerID string, archive *discordgo.Channel) *discordgo.MessageSend {
	description := fmt.Sprintf("This ticket is being closed by <@%s>\n\n", closerID)
	if archive != nil {
		description += fmt.Sprintf("📄 **Transcript saved:** <#%s>\n\n", archive.ID)
	}
	description += fmt.Sprintf("**The channel will be deleted in %s...**\n\n", HumanDelay(s.cfg.DeleteDelay)) +
		fmt.Sprintf("Thank you for contacting **%s**!", s.cfg.BrandName)

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "🔒 Ticket Closing",
			Description: description,
			Color:       colorClosing,
			Footer:      &discordgo.MessageEmbedFooter{Text: s.cfg.BrandName},
			Timestamp:   s.clock.Now().UTC().Format(time.RFC3339),
		}},
	}
}

// HumanDelay renders d in whole seconds for user-facing messages.
func HumanDelay(d time.Duration) string {
	seconds := int(d.Round(time.Second) / time.Second)
	if seconds == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", seconds)
}
