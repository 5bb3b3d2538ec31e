package service

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Platform is the subset of the chat platform the ticket lifecycle calls
// into. internal/discord adapts a live gateway session to it.
type Platform interface {
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error)
	CreateChannel(ctx context.Context, guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)
	// ChannelMessages returns up to limit messages older than beforeID,
	// newest first. An empty beforeID starts from the latest message.
	ChannelMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]*discordgo.Message, error)
	SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
	DeleteChannel(ctx context.Context, channelID string) error
	// BotUserID is the platform identity of the bot itself.
	BotUserID() string
}

// PresenceSetter updates the bot's visible status text.
type PresenceSetter interface {
	SetWatching(status string) error
}
