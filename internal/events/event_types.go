package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketClosed       EventType = "ticket_closed"
	EventTranscriptArchived EventType = "transcript_archived"
	EventTicketDeleted      EventType = "ticket_deleted"
)

// Event represents a ticket lifecycle event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	GuildID   string    `json:"guild_id"`
	ChannelID string    `json:"channel_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Name       string `json:"name"`
	Number     int    `json:"number"`
	CategoryID string `json:"category_id"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Name             string `json:"name"`
	ArchiveChannelID string `json:"archive_channel_id,omitempty"`
	TranscriptError  string `json:"transcript_error,omitempty"`
}

// TranscriptArchivedPayload payload.
type TranscriptArchivedPayload struct {
	ArchiveChannelID string `json:"archive_channel_id"`
	FileName         string `json:"file_name"`
	MessageCount     int    `json:"message_count"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}
