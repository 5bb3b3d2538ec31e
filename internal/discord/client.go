// Package discord adapts a discordgo gateway session to the interfaces the
// ticket services and interaction handlers depend on.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/config"
)

// Intents the bot needs: guild and channel structure, member joins for the
// auto-role and message content for transcripts.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent

// Client wraps a discordgo session. Every REST call carries the caller's
// context.
type Client struct {
	session *discordgo.Session
	logger  *zap.Logger
}

// NewClient creates a session for cfg without connecting it.
func NewClient(cfg config.DiscordConfig, logger *zap.Logger) (*Client, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = Intents
	session.StateEnabled = true
	return &Client{session: session, logger: logger}, nil
}

// Session exposes the underlying session for handler registration.
func (c *Client) Session() *discordgo.Session {
	return c.session
}

// Open connects to the gateway.
func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (c *Client) Close() error {
	return c.session.Close()
}

// Connected reports whether the gateway handshake has completed.
func (c *Client) Connected() bool {
	return c.session.DataReady
}

// BotUserID returns the bot's own user id once the session is ready.
func (c *Client) BotUserID() string {
	if c.session.State == nil || c.session.State.User == nil {
		return ""
	}
	return c.session.State.User.ID
}

func (c *Client) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	return c.session.Channel(channelID, discordgo.WithContext(ctx))
}

func (c *Client) GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	return c.session.GuildChannels(guildID, discordgo.WithContext(ctx))
}

func (c *Client) CreateChannel(ctx context.Context, guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return c.session.GuildChannelCreateComplex(guildID, data, discordgo.WithContext(ctx))
}

func (c *Client) ChannelMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]*discordgo.Message, error) {
	return c.session.ChannelMessages(channelID, limit, beforeID, "", "", discordgo.WithContext(ctx))
}

func (c *Client) SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return c.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
}

func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := c.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return err
}

// SetWatching sets a "Watching <status>" activity.
func (c *Client) SetWatching(status string) error {
	return c.session.UpdateWatchStatus(0, status)
}

func (c *Client) Respond(ctx context.Context, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return c.session.InteractionRespond(i, resp, discordgo.WithContext(ctx))
}

func (c *Client) EditResponse(ctx context.Context, i *discordgo.Interaction, content string) error {
	_, err := c.session.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content}, discordgo.WithContext(ctx))
	return err
}

func (c *Client) Followup(ctx context.Context, i *discordgo.Interaction, params *discordgo.WebhookParams) error {
	_, err := c.session.FollowupMessageCreate(i, true, params, discordgo.WithContext(ctx))
	return err
}

func (c *Client) GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	return c.session.GuildRoles(guildID, discordgo.WithContext(ctx))
}

func (c *Client) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	return c.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

// SyncCommands replaces the application's commands in guildID, or the
// global set when guildID is empty.
func (c *Client) SyncCommands(ctx context.Context, appID, guildID string, commands []*discordgo.ApplicationCommand) error {
	if appID == "" {
		appID = c.BotUserID()
	}
	synced, err := c.session.ApplicationCommandBulkOverwrite(appID, guildID, commands, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sync application commands: %w", err)
	}
	c.logger.Info("application commands synced",
		zap.String("guild_id", guildID),
		zap.Int("count", len(synced)))
	return nil
}
