package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const panelColor = 0x00D9FF

var adminPermission int64 = discordgo.PermissionAdministrator

// Commands returns the slash command definitions the bot serves.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandClose,
			Description: "Close the current support ticket",
		},
		{
			Name:                     CommandSetupPanel,
			Description:              "Setup the support ticket panel (Admin only)",
			DefaultMemberPermissions: &adminPermission,
		},
	}
}

func (b *Bot) handleSetupPanel(ctx context.Context, ex *exchange) error {
	actor := actorFromInteraction(ex.i)
	if actor.Permissions&discordgo.PermissionAdministrator == 0 {
		return ex.reply(ctx, "❌ You need Administrator permission to use this command.", true)
	}

	b.logger.Info("posting ticket panel",
		zap.String("channel_id", ex.i.ChannelID),
		zap.String("user_id", actor.UserID))
	return ex.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{b.panelEmbed()},
			Components: panelButtons(),
		},
	})
}

func (b *Bot) panelEmbed() *discordgo.MessageEmbed {
	brand := b.cfg.Tickets.BrandName
	return &discordgo.MessageEmbed{
		Title: "🎫 " + brand + " Support Center",
		Description: "**Welcome to " + brand + " Support!**\n\n" +
			"Need assistance? Our support team is here to help you.\n" +
			"Select an option below to create a private ticket channel where you can discuss your issue with our staff.",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "❓ Inquire",
				Value: "Get help with technical issues, questions, or general inquiries. Our team will assist you promptly.",
			},
			{
				Name:  "🔧 Support",
				Value: "Need technical support or have a specific issue? Our support team is ready to help.",
			},
			{
				Name:  "🚫 Ban Appeal",
				Value: "Think a ban was a mistake? Let us know.",
			},
		},
		Color:     panelColor,
		Footer:    &discordgo.MessageEmbedFooter{Text: brand + " • Click a button below to get started"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func panelButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "❓ Inquire", Style: discordgo.PrimaryButton, CustomID: ButtonCreateInquire},
			discordgo.Button{Label: "🔧 Support", Style: discordgo.SecondaryButton, CustomID: ButtonCreateSupport},
			discordgo.Button{Label: "🚫 Ban Appeal", Style: discordgo.DangerButton, CustomID: ButtonBanAppeal},
		}},
	}
}
