package domain

import "time"

// TranscriptEntry is one message captured from a ticket channel.
type TranscriptEntry struct {
	MessageID   string
	Timestamp   time.Time
	Author      string
	Content     string
	Attachments []TranscriptAttachment
	Embeds      []TranscriptEmbed
}

// TranscriptAttachment references a file posted in the ticket.
type TranscriptAttachment struct {
	Name string
	URL  string
}

// TranscriptEmbed summarizes a rich embed.
type TranscriptEmbed struct {
	Title       string
	Description string
}

// Transcript is the immutable snapshot of a ticket channel taken at close time.
type Transcript struct {
	ChannelID   string
	ChannelName string
	CreatedAt   time.Time
	ClosedAt    time.Time
	Entries     []TranscriptEntry
	Text        string
}

// MessageCount returns the number of captured messages.
func (t *Transcript) MessageCount() int {
	if t == nil {
		return 0
	}
	return len(t.Entries)
}
