package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/service"
)

func (b *Bot) handleCreateButton(ctx context.Context, ex *exchange) error {
	if err := ex.deferEphemeral(ctx); err != nil {
		return err
	}

	actor := actorFromInteraction(ex.i)
	result, err := b.tickets.CreateTicket(ctx, actor)
	switch {
	case err != nil:
		b.logger.Error("ticket creation failed",
			zap.String("user_id", actor.UserID),
			zap.Error(err))
		return ex.edit(ctx, userMessage(err))
	case result.AlreadyOpen:
		return ex.edit(ctx, fmt.Sprintf("⚠️ You already have an open ticket: <#%s>", result.Channel.ID))
	default:
		return ex.edit(ctx, fmt.Sprintf("✅ Ticket created: <#%s>", result.Channel.ID))
	}
}

func (b *Bot) handleCloseButton(ctx context.Context, ex *exchange) error {
	actor := actorFromInteraction(ex.i)
	channel, err := b.tickets.AuthorizeClose(ctx, ex.i.ChannelID, actor)
	if err != nil {
		return ex.reply(ctx, userMessage(err), true)
	}
	if err := ex.deferEphemeral(ctx); err != nil {
		return err
	}

	result, err := b.tickets.CloseTicket(ctx, channel, actor)
	if err != nil {
		b.logger.Error("ticket close failed", zap.String("channel_id", channel.ID), zap.Error(err))
		return ex.edit(ctx, "❌ An error occurred while closing the ticket.")
	}

	content := "✅ Ticket will be closed in " + service.HumanDelay(b.tickets.DeleteDelay())
	if link := transcriptLink(result); link != "" {
		content += "\n" + link
	}
	return ex.edit(ctx, content)
}

func (b *Bot) handleCloseCommand(ctx context.Context, ex *exchange) error {
	actor := actorFromInteraction(ex.i)
	channel, err := b.tickets.AuthorizeClose(ctx, ex.i.ChannelID, actor)
	if err != nil {
		return ex.reply(ctx, userMessage(err), true)
	}
	if err := ex.reply(ctx, "🔒 Closing ticket...", false); err != nil {
		return err
	}

	result, err := b.tickets.CloseTicket(ctx, channel, actor)
	if err != nil {
		b.logger.Error("ticket close failed", zap.String("channel_id", channel.ID), zap.Error(err))
		return ex.followup(ctx, "❌ An error occurred while closing the ticket.", false)
	}
	if link := transcriptLink(result); link != "" {
		return ex.followup(ctx, link, true)
	}
	return nil
}

func transcriptLink(result *service.CloseResult) string {
	if result == nil || result.ArchiveChannel == nil {
		return ""
	}
	return fmt.Sprintf("📄 Transcript saved to <#%s>", result.ArchiveChannel.ID)
}
