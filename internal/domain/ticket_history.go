package domain

import "time"

// ChangeType enumerates lifecycle transitions recorded in history.
type ChangeType string

const (
	ChangeTypeCreated  ChangeType = "CREATED"
	ChangeTypeClosed   ChangeType = "CLOSED"
	ChangeTypeArchived ChangeType = "ARCHIVED"
	ChangeTypeDeleted  ChangeType = "DELETED"
)

// TicketHistory stores an audit trail entry for a ticket channel.
type TicketHistory struct {
	ID          string
	ChannelID   string
	GuildID     string
	ChangedByID *string
	ChangeType  ChangeType
	Details     map[string]any
	CreatedAt   time.Time
}
