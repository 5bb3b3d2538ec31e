package bot

import (
	"context"
	"runtime/debug"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/domain"
	"github.com/ticketdesk/ticket-bot/internal/observability"
	"github.com/ticketdesk/ticket-bot/internal/service"
	apperrors "github.com/ticketdesk/ticket-bot/pkg/util/errorutil"
)

// Component and command identifiers.
const (
	ButtonCreateInquire = "create_inquire_ticket"
	ButtonCreateSupport = "create_support_ticket"
	ButtonBanAppeal     = "create_ban_appeal"
	ButtonCloseTicket   = service.CloseTicketButtonID

	CommandClose      = "close"
	CommandSetupPanel = "setup-ticket-panel"
)

const genericFailure = "There was an error while executing this command!"

// exchange tracks whether an interaction has been answered so later replies
// go through the right endpoint.
type exchange struct {
	i         *discordgo.Interaction
	responder Responder
	answered  bool
}

func (e *exchange) respond(ctx context.Context, resp *discordgo.InteractionResponse) error {
	if err := e.responder.Respond(ctx, e.i, resp); err != nil {
		return err
	}
	e.answered = true
	return nil
}

func (e *exchange) reply(ctx context.Context, content string, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return e.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (e *exchange) deferEphemeral(ctx context.Context) error {
	return e.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func (e *exchange) edit(ctx context.Context, content string) error {
	return e.responder.EditResponse(ctx, e.i, content)
}

func (e *exchange) followup(ctx context.Context, content string, ephemeral bool) error {
	params := &discordgo.WebhookParams{Content: content}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	return e.responder.Followup(ctx, e.i, params)
}

// HandleInteraction routes one interaction. Panics and unexpected errors
// end in a generic ephemeral reply.
func (b *Bot) HandleInteraction(i *discordgo.Interaction) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	ex := &exchange{i: i, responder: b.responder}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic recovered in interaction handler",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			b.fail(ctx, ex, apperrors.NewInternalError(nil))
		}
	}()

	if err := b.route(ctx, ex); err != nil {
		b.fail(ctx, ex, err)
	}
}

func (b *Bot) route(ctx context.Context, ex *exchange) error {
	switch ex.i.Type {
	case discordgo.InteractionMessageComponent:
		switch id := ex.i.MessageComponentData().CustomID; id {
		case ButtonCreateInquire, ButtonCreateSupport:
			return b.handleCreateButton(ctx, ex)
		case ButtonBanAppeal:
			return ex.reply(ctx, "🚫 Ban Appeal functionality coming soon!", true)
		case ButtonCloseTicket:
			return b.handleCloseButton(ctx, ex)
		default:
			b.logger.Debug("ignoring unknown component", zap.String("custom_id", id))
		}
	case discordgo.InteractionApplicationCommand:
		switch name := ex.i.ApplicationCommandData().Name; name {
		case CommandClose:
			return b.handleCloseCommand(ctx, ex)
		case CommandSetupPanel:
			return b.handleSetupPanel(ctx, ex)
		default:
			b.logger.Warn("no command matching interaction", zap.String("command", name))
		}
	}
	return nil
}

// fail logs err and tells the actor something went wrong without exposing
// internals.
func (b *Bot) fail(ctx context.Context, ex *exchange, err error) {
	b.metrics.Inc(observability.MetricInteractionErrors)
	b.logger.Error("interaction failed",
		zap.String("interaction_id", ex.i.ID),
		zap.String("channel_id", ex.i.ChannelID),
		zap.Error(err))

	var sendErr error
	if ex.answered {
		sendErr = ex.followup(ctx, genericFailure, true)
	} else {
		sendErr = ex.reply(ctx, genericFailure, true)
	}
	if sendErr != nil {
		b.logger.Warn("failed to report interaction error", zap.Error(sendErr))
	}
}

// actorFromInteraction identifies who triggered i. Guild interactions carry
// the member with roles and resolved permissions.
func actorFromInteraction(i *discordgo.Interaction) domain.Actor {
	if i.Member != nil {
		actor := domain.Actor{RoleIDs: i.Member.Roles, Permissions: i.Member.Permissions}
		if i.Member.User != nil {
			actor.UserID = i.Member.User.ID
			actor.Username = i.Member.User.Username
		}
		return actor
	}
	if i.User != nil {
		return domain.Actor{UserID: i.User.ID, Username: i.User.Username}
	}
	return domain.Actor{}
}

func userMessage(err error) string {
	msg := apperrors.ToDomainError(err).Message
	if strings.HasPrefix(msg, "❌") {
		return msg
	}
	return "❌ " + msg
}
