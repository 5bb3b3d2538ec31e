package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/ticketdesk/ticket-bot/internal/config"
	"github.com/ticketdesk/ticket-bot/internal/domain"
	apperrors "github.com/ticketdesk/ticket-bot/pkg/util/errorutil"
)

// AccessPolicy decides who may close a ticket channel. It is the single
// check behind both the /close command and the close button.
type AccessPolicy struct {
	StaffRoleID string
	CategoryID  string
	Naming      Naming
}

// IsTicketChannel reports whether channel looks like a ticket at all.
func (p AccessPolicy) IsTicketChannel(channel *discordgo.Channel) bool {
	if channel == nil || !p.Naming.HasTicketPrefix(channel.Name) {
		return false
	}
	return p.CategoryID == "" || channel.ParentID == p.CategoryID
}

// CanClose reports whether actor may close channel. record is the creator
// index entry for the channel, or nil when none exists.
func (p AccessPolicy) CanClose(actor domain.Actor, channel *discordgo.Channel, record *domain.TicketRecord) bool {
	if record != nil && record.ChannelID == channel.ID {
		if record.CreatorID == actor.UserID {
			return true
		}
	} else if p.hasCreatorOverride(actor, channel) || p.matchesCreatorName(actor, channel) {
		return true
	}
	if actor.HasRole(p.StaffRoleID) {
		return true
	}
	return actor.Permissions&discordgo.PermissionAdministrator != 0
}

// hasCreatorOverride treats an explicit member-level view grant as the
// creator marker; only the creator receives one at creation time.
func (p AccessPolicy) hasCreatorOverride(actor domain.Actor, channel *discordgo.Channel) bool {
	for _, ow := range channel.PermissionOverwrites {
		if ow == nil || ow.ID != actor.UserID || ow.Type != discordgo.PermissionOverwriteTypeMember {
			continue
		}
		if ow.Allow&discordgo.PermissionViewChannel != 0 {
			return true
		}
	}
	return false
}

func (p AccessPolicy) matchesCreatorName(actor domain.Actor, channel *discordgo.Channel) bool {
	if p.Naming.Mode != config.TicketModePerUser || actor.Username == "" {
		return false
	}
	prefix := p.Naming.UserPrefix(NormalizeUsername(actor.Username))
	return strings.HasPrefix(strings.ToLower(channel.Name), prefix)
}

// Policy returns the access policy in effect.
func (s *TicketService) Policy() AccessPolicy {
	return s.policy
}

// AuthorizeClose loads channelID and checks that actor may close it. It
// returns NOT_FOUND or PERMISSION_DENIED domain errors otherwise.
func (s *TicketService) AuthorizeClose(ctx context.Context, channelID string, actor domain.Actor) (*discordgo.Channel, error) {
	channel, err := s.platform.Channel(ctx, channelID)
	if err != nil {
		return nil, apperrors.NewChannelNotFound(channelID, err)
	}
	if !s.policy.IsTicketChannel(channel) {
		return nil, apperrors.NewPermissionDenied("❌ This can only be used in ticket channels.")
	}
	if !s.policy.CanClose(actor, channel, s.lookupRecord(ctx, channel.ID)) {
		return nil, apperrors.NewPermissionDenied("❌ You do not have permission to close this ticket.")
	}
	return channel, nil
}
