package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/events"
)

// PresenceService keeps the bot status in line with the number of open tickets.
type PresenceService struct {
	tickets    *TicketService
	presence   PresenceSetter
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewPresenceService creates the service.
func NewPresenceService(tickets *TicketService, presence PresenceSetter, dispatcher events.Dispatcher, logger *zap.Logger) *PresenceService {
	return &PresenceService{
		tickets:    tickets,
		presence:   presence,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (p *PresenceService) RegisterHandlers() {
	if p.dispatcher == nil {
		return
	}
	refresh := func(ctx context.Context, event events.Event) error {
		p.Refresh(ctx, event.GuildID)
		return nil
	}
	p.dispatcher.Subscribe(events.EventTicketCreated, refresh)
	p.dispatcher.Subscribe(events.EventTicketDeleted, refresh)
}

// Refresh recounts open tickets in guildID and updates the status. Failures
// are logged only.
func (p *PresenceService) Refresh(ctx context.Context, guildID string) {
	if p.presence == nil || guildID == "" {
		return
	}
	count, err := p.tickets.CountOpenTickets(ctx, guildID)
	if err != nil {
		p.logger.Warn("failed to count open tickets", zap.String("guild_id", guildID), zap.Error(err))
		return
	}
	if err := p.presence.SetWatching(PresenceText(count)); err != nil {
		p.logger.Warn("failed to update presence", zap.Error(err))
	}
}

// PresenceText is the status shown for count open tickets.
func PresenceText(count int) string {
	if count == 1 {
		return "1 open ticket"
	}
	return fmt.Sprintf("%d open tickets", count)
}
