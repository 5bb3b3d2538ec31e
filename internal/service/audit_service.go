package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/domain"
	"github.com/ticketdesk/ticket-bot/internal/events"
	"github.com/ticketdesk/ticket-bot/internal/repository"
)

// AuditService records ticket lifecycle events in the log and, when
// Postgres is configured, in ticket_history.
type AuditService struct {
	dispatcher events.Dispatcher
	history    repository.TicketHistoryRepository
	logger     *zap.Logger
}

// NewAuditService creates the service. history may be nil.
func NewAuditService(dispatcher events.Dispatcher, history repository.TicketHistoryRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		history:    history,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketCreated, a.handle(domain.ChangeTypeCreated))
	a.dispatcher.Subscribe(events.EventTicketClosed, a.handle(domain.ChangeTypeClosed))
	a.dispatcher.Subscribe(events.EventTranscriptArchived, a.handle(domain.ChangeTypeArchived))
	a.dispatcher.Subscribe(events.EventTicketDeleted, a.handle(domain.ChangeTypeDeleted))
}

func (a *AuditService) handle(change domain.ChangeType) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		a.logger.Info(string(event.Type),
			zap.String("event_id", event.ID),
			zap.String("channel_id", event.ChannelID),
			zap.String("actor_id", event.ActorID),
			zap.Any("payload", event.Payload))
		if a.history == nil {
			return nil
		}
		entry := &domain.TicketHistory{
			ChannelID:  event.ChannelID,
			GuildID:    event.GuildID,
			ChangeType: change,
			Details:    payloadDetails(event),
		}
		if event.ActorID != "" {
			actor := event.ActorID
			entry.ChangedByID = &actor
		}
		return a.history.Create(ctx, entry)
	}
}

func payloadDetails(event events.Event) map[string]any {
	details := map[string]any{"event_id": event.ID}
	switch p := event.Payload.(type) {
	case events.TicketCreatedPayload:
		details["name"] = p.Name
		details["number"] = p.Number
		details["category_id"] = p.CategoryID
	case events.TicketClosedPayload:
		details["name"] = p.Name
		if p.ArchiveChannelID != "" {
			details["archive_channel_id"] = p.ArchiveChannelID
		}
		if p.TranscriptError != "" {
			details["transcript_error"] = p.TranscriptError
		}
	case events.TranscriptArchivedPayload:
		details["archive_channel_id"] = p.ArchiveChannelID
		details["file_name"] = p.FileName
		details["message_count"] = p.MessageCount
	case events.TicketDeletedPayload:
		details["name"] = p.Name
		if p.Error != "" {
			details["error"] = p.Error
		}
	}
	return details
}
