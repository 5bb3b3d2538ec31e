package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/config"
)

const (
	maxSlugLength       = 20
	sequentialPrefix    = "inquire-"
	perUserPrefix       = "support-"
	sequentialNameStart = "Inquire-"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]`)

// NormalizeUsername lower-cases username, replaces every character outside
// [a-z0-9] with '-' and truncates the result to 20 characters.
func NormalizeUsername(username string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(username), "-")
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	return slug
}

// FormatTicketNumber zero-pads n to three digits. Wider numbers are kept as is.
func FormatTicketNumber(n int) string {
	return fmt.Sprintf("%03d", n)
}

// Naming derives ticket channel names and patterns for a ticket mode.
type Naming struct {
	Mode config.TicketMode
}

// ChannelName returns the name for ticket number n. slug is ignored in
// sequential mode.
func (n Naming) ChannelName(slug string, number int) string {
	if n.Mode == config.TicketModePerUser {
		return perUserPrefix + slug + "-" + FormatTicketNumber(number)
	}
	return sequentialNameStart + FormatTicketNumber(number)
}

// UserPrefix is the name prefix shared by every ticket of one user in per-user mode.
func (n Naming) UserPrefix(slug string) string {
	return perUserPrefix + slug + "-"
}

// Pattern matches ticket names and captures the numeric suffix. An empty
// slug in per-user mode matches every user's tickets.
func (n Naming) Pattern(slug string) *regexp.Regexp {
	if n.Mode != config.TicketModePerUser {
		return regexp.MustCompile(`(?i)^inquire-(\d+)$`)
	}
	if slug == "" {
		return regexp.MustCompile(`(?i)^support-.+-(\d+)$`)
	}
	return regexp.MustCompile(`(?i)^support-` + regexp.QuoteMeta(slug) + `-(\d+)$`)
}

// HasTicketPrefix is the cheap name filter both close triggers apply before
// any permission check.
func (n Naming) HasTicketPrefix(name string) bool {
	lower := strings.ToLower(name)
	if n.Mode == config.TicketModePerUser {
		return strings.HasPrefix(lower, perUserPrefix)
	}
	return strings.HasPrefix(lower, sequentialPrefix)
}

// NextTicketNumber returns one more than the highest ticket number in the
// category, or 1 when there is none or the channel list cannot be read.
func (s *TicketService) NextTicketNumber(ctx context.Context, guildID, categoryID, slug string) int {
	channels, err := s.platform.GuildChannels(ctx, guildID)
	if err != nil {
		s.logger.Warn("cannot read ticket category; numbering restarts at 1",
			zap.String("guild_id", guildID),
			zap.String("category_id", categoryID),
			zap.Error(err))
		return 1
	}
	return maxTicketNumber(channels, categoryID, s.naming.Pattern(slug)) + 1
}

func maxTicketNumber(channels []*discordgo.Channel, categoryID string, pattern *regexp.Regexp) int {
	highest := 0
	for _, ch := range channels {
		if ch == nil || ch.ParentID != categoryID || ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		match := pattern.FindStringSubmatch(ch.Name)
		if match == nil {
			continue
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if number > highest {
			highest = number
		}
	}
	return highest
}
