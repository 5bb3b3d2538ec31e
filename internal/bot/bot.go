// Package bot turns gateway events into ticket operations: button clicks,
// slash commands, member joins and the ready signal.
package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/config"
	"github.com/ticketdesk/ticket-bot/internal/observability"
	"github.com/ticketdesk/ticket-bot/internal/service"
)

const handlerTimeout = 30 * time.Second

// Responder answers interactions.
type Responder interface {
	Respond(ctx context.Context, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error
	EditResponse(ctx context.Context, i *discordgo.Interaction, content string) error
	Followup(ctx context.Context, i *discordgo.Interaction, params *discordgo.WebhookParams) error
}

// GuildManager reads guild roles and grants them to members.
type GuildManager interface {
	GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error)
	AddMemberRole(ctx context.Context, guildID, userID, roleID string) error
}

// CommandSyncer publishes the slash command definitions.
type CommandSyncer interface {
	SyncCommands(ctx context.Context, appID, guildID string, commands []*discordgo.ApplicationCommand) error
}

// Bot routes gateway events to the ticket services.
type Bot struct {
	tickets   *service.TicketService
	presence  *service.PresenceService
	platform  service.Platform
	responder Responder
	guilds    GuildManager
	commands  CommandSyncer
	cfg       config.Config
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// Dependencies bundles collaborators for the bot.
type Dependencies struct {
	Tickets   *service.TicketService
	Presence  *service.PresenceService
	Platform  service.Platform
	Responder Responder
	Guilds    GuildManager
	Commands  CommandSyncer
	Config    config.Config
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// New constructs the bot.
func New(deps Dependencies) *Bot {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Bot{
		tickets:   deps.Tickets,
		presence:  deps.Presence,
		platform:  deps.Platform,
		responder: deps.Responder,
		guilds:    deps.Guilds,
		commands:  deps.Commands,
		cfg:       deps.Config,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
	}
}

// Register attaches the bot's handlers to session.
func (b *Bot) Register(session *discordgo.Session) {
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.OnReady(r)
	})
	session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.HandleInteraction(i.Interaction)
	})
	session.AddHandler(func(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
		b.OnMemberJoin(m.Member)
	})
}

// OnReady syncs slash commands and sets the initial presence.
func (b *Bot) OnReady(r *discordgo.Ready) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	fields := []zap.Field{zap.Int("guilds", len(r.Guilds))}
	if r.User != nil {
		fields = append(fields, zap.String("user", r.User.Username), zap.String("user_id", r.User.ID))
	}
	b.logger.Info("gateway ready", fields...)

	if b.commands != nil {
		if err := b.commands.SyncCommands(ctx, b.cfg.Discord.ApplicationID, b.cfg.Discord.GuildID, Commands()); err != nil {
			b.logger.Error("failed to register commands", zap.Error(err))
		}
	}
	if b.presence != nil {
		for _, guild := range r.Guilds {
			b.presence.Refresh(ctx, guild.ID)
		}
	}
}
