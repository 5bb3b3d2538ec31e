package repository

import (
	"context"
	"errors"

	"github.com/ticketdesk/ticket-bot/internal/domain"
)

// ErrNotFound is returned when no record exists for a ticket channel.
var ErrNotFound = errors.New("ticket record not found")

// CreatorIndex records who opened each ticket channel so closing rights do
// not depend on permission overrides surviving in the platform cache.
type CreatorIndex interface {
	Put(ctx context.Context, record *domain.TicketRecord) error
	Get(ctx context.Context, channelID string) (*domain.TicketRecord, error)
	Delete(ctx context.Context, channelID string) error
	Close() error
}
