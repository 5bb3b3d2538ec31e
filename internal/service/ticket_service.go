package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/clock"
	"github.com/ticketdesk/ticket-bot/internal/config"
	"github.com/ticketdesk/ticket-bot/internal/domain"
	"github.com/ticketdesk/ticket-bot/internal/events"
	"github.com/ticketdesk/ticket-bot/internal/observability"
	"github.com/ticketdesk/ticket-bot/internal/repository"
	apperrors "github.com/ticketdesk/ticket-bot/pkg/util/errorutil"
)

// CloseTicketButtonID is the custom id of the close button on the welcome message.
const CloseTicketButtonID = "close_ticket"

const (
	colorInfo    = 0x00D9FF
	colorClosing = 0xFF6B6B
)

const (
	memberAccess = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory
	staffAccess  = memberAccess | discordgo.PermissionManageMessages
)

// TicketService coordinates the ticket channel lifecycle.
type TicketService struct {
	platform   Platform
	index      repository.CreatorIndex
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
	metrics    *observability.Metrics
	tracer     trace.Tracer
	cfg        config.TicketsConfig
	naming     Naming
	policy     AccessPolicy
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Platform   Platform
	Index      repository.CreatorIndex
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Config     config.TicketsConfig
}

// CreateResult describes the outcome of a create request.
type CreateResult struct {
	Channel     *discordgo.Channel
	Record      *domain.TicketRecord
	AlreadyOpen bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Index == nil {
		deps.Index = repository.NewMemoryCreatorIndex()
	}
	if deps.Config.PageSize <= 0 {
		deps.Config.PageSize = 100
	}
	naming := Naming{Mode: deps.Config.Mode}
	return &TicketService{
		platform:   deps.Platform,
		index:      deps.Index,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		tracer:     otel.Tracer("github.com/ticketdesk/ticket-bot/internal/service"),
		cfg:        deps.Config,
		naming:     naming,
		policy: AccessPolicy{
			StaffRoleID: deps.Config.StaffRoleID,
			CategoryID:  deps.Config.CategoryID,
			Naming:      naming,
		},
	}
}

// Naming exposes the naming rules in effect.
func (s *TicketService) Naming() Naming {
	return s.naming
}

// CreateTicket opens a private ticket channel for requester in the
// configured ticket category. In per-user mode an existing ticket of the
// same user is returned instead of creating a duplicate; that check is not
// atomic with the create.
func (s *TicketService) CreateTicket(ctx context.Context, requester domain.Actor) (*CreateResult, error) {
	ctx, span := s.tracer.Start(ctx, "TicketService.CreateTicket",
		trace.WithAttributes(attribute.String("user.id", requester.UserID)))
	defer span.End()

	category, err := s.platform.Channel(ctx, s.cfg.CategoryID)
	if err != nil {
		return nil, apperrors.NewCategoryNotFound(s.cfg.CategoryID, err)
	}
	if category.Type != discordgo.ChannelTypeGuildCategory {
		return nil, apperrors.NewCategoryNotFound(s.cfg.CategoryID, fmt.Errorf("channel %s is not a category", category.ID))
	}
	guildID := category.GuildID

	slug := ""
	if s.naming.Mode == config.TicketModePerUser {
		slug = NormalizeUsername(requester.Username)
		existing, err := s.findOpenTicket(ctx, guildID, category.ID, s.naming.UserPrefix(slug))
		if err != nil {
			return nil, apperrors.NewCreationFailed(err)
		}
		if existing != nil {
			s.metrics.Inc(observability.MetricTicketsAlreadyOpen)
			s.logger.Info("ticket already open",
				zap.String("user_id", requester.UserID),
				zap.String("channel_id", existing.ID))
			return &CreateResult{Channel: existing, AlreadyOpen: true}, nil
		}
	}

	number := s.NextTicketNumber(ctx, guildID, category.ID, slug)
	name := s.naming.ChannelName(slug, number)

	channel, err := s.platform.CreateChannel(ctx, guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             category.ID,
		PermissionOverwrites: s.ticketOverwrites(guildID, requester.UserID),
	})
	if err != nil {
		return nil, apperrors.NewCreationFailed(err)
	}

	record := &domain.TicketRecord{
		ChannelID:   channel.ID,
		GuildID:     guildID,
		CategoryID:  category.ID,
		CreatorID:   requester.UserID,
		CreatorName: requester.Username,
		Name:        channel.Name,
		Number:      number,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.index.Put(ctx, record); err != nil {
		s.logger.Warn("failed to record ticket creator",
			zap.String("channel_id", channel.ID),
			zap.Error(err))
	}

	if _, err := s.platform.SendMessage(ctx, channel.ID, s.welcomeMessage(requester.UserID)); err != nil {
		return nil, apperrors.NewCreationFailed(err)
	}

	s.metrics.Inc(observability.MetricTicketsCreated)
	s.logger.Info("ticket created",
		zap.String("channel_id", channel.ID),
		zap.String("name", channel.Name),
		zap.String("user_id", requester.UserID))
	s.publish(ctx, events.Event{
		Type:      events.EventTicketCreated,
		GuildID:   guildID,
		ChannelID: channel.ID,
		ActorID:   requester.UserID,
		Payload: events.TicketCreatedPayload{
			Name:       channel.Name,
			Number:     number,
			CategoryID: category.ID,
		},
	})

	return &CreateResult{Channel: channel, Record: record}, nil
}

// CountOpenTickets counts channels in the ticket category that carry a ticket name.
func (s *TicketService) CountOpenTickets(ctx context.Context, guildID string) (int, error) {
	channels, err := s.platform.GuildChannels(ctx, guildID)
	if err != nil {
		return 0, err
	}
	pattern := s.naming.Pattern("")
	count := 0
	for _, ch := range channels {
		if ch.ParentID == s.cfg.CategoryID && ch.Type == discordgo.ChannelTypeGuildText && pattern.MatchString(ch.Name) {
			count++
		}
	}
	return count, nil
}

func (s *TicketService) findOpenTicket(ctx context.Context, guildID, categoryID, prefix string) (*discordgo.Channel, error) {
	channels, err := s.platform.GuildChannels(ctx, guildID)
	if err != nil {
		return nil, err
	}
	for _, ch := range channels {
		if ch.ParentID == categoryID && strings.HasPrefix(strings.ToLower(ch.Name), prefix) {
			return ch, nil
		}
	}
	return nil, nil
}

func (s *TicketService) ticketOverwrites(guildID, creatorID string) []*discordgo.PermissionOverwrite {
	return []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: creatorID, Type: discordgo.PermissionOverwriteTypeMember, Allow: memberAccess},
		{ID: s.cfg.StaffRoleID, Type: discordgo.PermissionOverwriteTypeRole, Allow: staffAccess},
		{ID: s.platform.BotUserID(), Type: discordgo.PermissionOverwriteTypeMember, Allow: staffAccess},
	}
}

func (s *TicketService) welcomeMessage(creatorID string) *discordgo.MessageSend {
	brand := s.cfg.BrandName
	description := fmt.Sprintf("Hello <@%s>, welcome to your **%s** ticket!\n\n", creatorID, brand) +
		"**What happens next?**\n" +
		"• Please describe your issue, question, or concern in detail\n" +
		"• Our support team will respond as soon as possible\n" +
		"• Be patient and respectful while waiting for assistance\n\n" +
		"💡 **Tip:** Click the button below to close this ticket when your issue is resolved."

	return &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s> | <@&%s>", creatorID, s.cfg.StaffRoleID),
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "🎫 Ticket Created",
			Description: description,
			Color:       colorInfo,
			Footer:      &discordgo.MessageEmbedFooter{Text: brand + " Support Team"},
			Timestamp:   s.clock.Now().UTC().Format(time.RFC3339),
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "🔒 Close Ticket",
					Style:    discordgo.DangerButton,
					CustomID: CloseTicketButtonID,
				},
			}},
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{creatorID},
			Roles: []string{s.cfg.StaffRoleID},
		},
	}
}

func (s *TicketService) lookupRecord(ctx context.Context, channelID string) *domain.TicketRecord {
	record, err := s.index.Get(ctx, channelID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("creator index lookup failed",
				zap.String("channel_id", channelID),
				zap.Error(err))
		}
		return nil
	}
	return record
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("channel_id", event.ChannelID),
			zap.Error(err))
	}
}
