package domain

import "time"

// TicketRecord is the durable index entry written when a ticket channel is
// created. The channel itself remains the source of truth for existence.
type TicketRecord struct {
	ChannelID   string
	GuildID     string
	CategoryID  string
	CreatorID   string
	CreatorName string
	Name        string
	Number      int
	CreatedAt   time.Time
}

// Actor is the member that triggered an interaction.
type Actor struct {
	UserID      string
	Username    string
	RoleIDs     []string
	Permissions int64
}

// HasRole reports whether the actor holds roleID.
func (a Actor) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, id := range a.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
