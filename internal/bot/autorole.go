package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// OnMemberJoin grants the configured auto-role to a new member and posts a
// welcome line. Failures are logged only.
func (b *Bot) OnMemberJoin(member *discordgo.Member) {
	cfg := b.cfg.AutoRole
	if !cfg.Enabled || member == nil || member.User == nil || b.guilds == nil {
		return
	}
	if cfg.RoleID == "" {
		b.logger.Warn("auto-role enabled without AUTO_ROLE_ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	logger := b.logger.With(
		zap.String("guild_id", member.GuildID),
		zap.String("user_id", member.User.ID),
		zap.String("role_id", cfg.RoleID))

	role, err := b.findRole(ctx, member.GuildID, cfg.RoleID)
	if err != nil {
		logger.Error("failed to load guild roles", zap.Error(err))
		return
	}
	if role == nil {
		logger.Error("auto-role not found in guild")
		return
	}

	if err := b.guilds.AddMemberRole(ctx, member.GuildID, member.User.ID, role.ID); err != nil {
		logger.Error("failed to assign auto-role", zap.Error(err))
		return
	}
	logger.Info("auto-role assigned", zap.String("role", role.Name))

	if cfg.WelcomeChannelID == "" || b.platform == nil {
		return
	}
	welcome := &discordgo.MessageSend{
		Content: fmt.Sprintf("Welcome to the server, <@%s>! You have been given the %s role.", member.User.ID, role.Name),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{member.User.ID},
		},
	}
	if _, err := b.platform.SendMessage(ctx, cfg.WelcomeChannelID, welcome); err != nil {
		logger.Warn("failed to post welcome message", zap.Error(err))
	}
}

func (b *Bot) findRole(ctx context.Context, guildID, roleID string) (*discordgo.Role, error) {
	roles, err := b.guilds.GuildRoles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role, nil
		}
	}
	return nil, nil
}
