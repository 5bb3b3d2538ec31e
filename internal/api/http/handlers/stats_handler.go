package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/ticket-bot/internal/observability"
)

// TicketCounter counts open tickets in a guild.
type TicketCounter interface {
	CountOpenTickets(ctx context.Context, guildID string) (int, error)
}

// StatsHandler exposes ticket counters.
type StatsHandler struct {
	tickets      TicketCounter
	metrics      *observability.Metrics
	defaultGuild string
}

// NewStatsHandler constructs handler. defaultGuild is used when the request
// names no guild_id.
func NewStatsHandler(tickets TicketCounter, metrics *observability.Metrics, defaultGuild string) *StatsHandler {
	return &StatsHandler{tickets: tickets, metrics: metrics, defaultGuild: defaultGuild}
}

// Stats GET /stats.
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	body := fiber.Map{
		"counters": h.metrics.Snapshot(),
		"requests": h.metrics.RequestSnapshot(),
	}

	guildID := c.Query("guild_id", h.defaultGuild)
	if guildID != "" && h.tickets != nil {
		open, err := h.tickets.CountOpenTickets(c.UserContext(), guildID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		body["guild_id"] = guildID
		body["open_tickets"] = open
	}
	return c.JSON(fiber.Map{"data": body})
}
