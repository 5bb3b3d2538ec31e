package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/ticketdesk/ticket-bot/internal/config"
	"github.com/ticketdesk/ticket-bot/internal/domain"
	"github.com/ticketdesk/ticket-bot/internal/events"
	"github.com/ticketdesk/ticket-bot/internal/observability"
	"github.com/ticketdesk/ticket-bot/internal/platformtest"
	apperrors "github.com/ticketdesk/ticket-bot/pkg/util/errorutil"
)

var jane = domain.Actor{UserID: "user-jane", Username: "Jane_Doe!!"}

func TestCreateTicketSequential(t *testing.T) {
	f := newFixture(t, config.TicketModeSequential)
	ctx := context.Background()

	res, err := f.svc.CreateTicket(ctx, jane)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.AlreadyOpen {
		t.Fatal("first ticket reported as already open")
	}
	ch := res.Channel
	if ch.Name != "Inquire-001" {
		t.Fatalf("name = %q, want Inquire-001", ch.Name)
	}
	if ch.ParentID != f.category.ID || ch.Type != discordgo.ChannelTypeGuildText {
		t.Errorf("channel placed wrong: parent=%q type=%v", ch.ParentID, ch.Type)
	}

	assertTicketOverwrites(t, ch.PermissionOverwrites)

	sent := f.platform.Sent(ch.ID)
	if len(sent) != 1 {
		t.Fatalf("welcome messages = %d, want 1", len(sent))
	}
	welcome := sent[0].Message
	if !strings.Contains(welcome.Content, "<@user-jane>") || !strings.Contains(welcome.Content, "<@&"+testStaffRole+">") {
		t.Errorf("welcome should mention creator and staff: %q", welcome.Content)
	}
	if got := closeButtons(welcome); got != 1 {
		t.Errorf("close buttons = %d, want 1", got)
	}

	record, err := f.index.Get(ctx, ch.ID)
	if err != nil {
		t.Fatalf("creator not indexed: %v", err)
	}
	if record.CreatorID != jane.UserID || record.Number != 1 {
		t.Errorf("record = %+v", record)
	}

	second, err := f.svc.CreateTicket(ctx, jane)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.AlreadyOpen || second.Channel.Name != "Inquire-002" {
		t.Fatalf("sequential mode should open Inquire-002, got %q (already open %v)", second.Channel.Name, second.AlreadyOpen)
	}

	if f.metrics.Get(observability.MetricTicketsCreated) != 2 {
		t.Errorf("created counter = %d", f.metrics.Get(observability.MetricTicketsCreated))
	}
	if types := f.eventTypes(); len(types) != 2 || types[0] != events.EventTicketCreated {
		t.Errorf("events = %v", types)
	}
}

func TestCreateTicketPerUserIsIdempotent(t *testing.T) {
	f := newFixture(t, config.TicketModePerUser)
	ctx := context.Background()

	first, err := f.svc.CreateTicket(ctx, jane)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Channel.Name != "support-jane-doe---001" {
		t.Fatalf("name = %q", first.Channel.Name)
	}

	second, err := f.svc.CreateTicket(ctx, jane)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if !second.AlreadyOpen {
		t.Fatal("second create should report the open ticket")
	}
	if second.Channel.ID != first.Channel.ID {
		t.Fatalf("got channel %s, want existing %s", second.Channel.ID, first.Channel.ID)
	}
	if calls := f.platform.Calls(platformtest.OpCreateChannel); calls != 1 {
		t.Fatalf("CreateChannel called %d times, want 1", calls)
	}

	bob := domain.Actor{UserID: "user-bob", Username: "bob"}
	other, err := f.svc.CreateTicket(ctx, bob)
	if err != nil {
		t.Fatalf("bob create: %v", err)
	}
	if other.AlreadyOpen || other.Channel.Name != "support-bob-001" {
		t.Fatalf("bob got %q (already open %v)", other.Channel.Name, other.AlreadyOpen)
	}
}

func TestCreateTicketCategoryNotFound(t *testing.T) {
	f := newFixture(t, config.TicketModeSequential)
	f.svc.cfg.CategoryID = "missing"

	_, err := f.svc.CreateTicket(context.Background(), jane)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
	if f.platform.Calls(platformtest.OpCreateChannel) != 0 {
		t.Fatal("no channel should be created")
	}
}

func TestCreateTicketRejectsNonCategory(t *testing.T) {
	f := newFixture(t, config.TicketModeSequential)
	text := f.platform.AddTextChannel(testGuildID, "", "general")
	f.svc.cfg.CategoryID = text.ID

	_, err := f.svc.CreateTicket(context.Background(), jane)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestCreateTicketPlatformFailures(t *testing.T) {
	for _, op := range []string{platformtest.OpCreateChannel, platformtest.OpSendMessage} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t, config.TicketModeSequential)
			cause := errors.New("HTTP 500")
			f.platform.Fail(op, cause)

			_, err := f.svc.CreateTicket(context.Background(), jane)
			if !apperrors.IsCode(err, apperrors.CodeCreationFailed) {
				t.Fatalf("err = %v, want CREATION_FAILED", err)
			}
			if !errors.Is(err, cause) {
				t.Fatal("platform cause should be wrapped")
			}
			if len(f.published) != 0 {
				t.Fatalf("no event expected, got %v", f.eventTypes())
			}
		})
	}
}

func TestCountOpenTickets(t *testing.T) {
	f := newFixture(t, config.TicketModeSequential)
	f.platform.AddTextChannel(testGuildID, f.category.ID, "Inquire-001")
	f.platform.AddTextChannel(testGuildID, f.category.ID, "Inquire-002")
	f.platform.AddTextChannel(testGuildID, f.category.ID, "notes")
	f.platform.AddTextChannel(testGuildID, f.archive.ID, "Inquire-003")

	count, err := f.svc.CountOpenTickets(context.Background(), testGuildID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func assertTicketOverwrites(t *testing.T, overwrites []*discordgo.PermissionOverwrite) {
	t.Helper()
	if len(overwrites) != 4 {
		t.Fatalf("overwrites = %d, want 4", len(overwrites))
	}
	byID := map[string]*discordgo.PermissionOverwrite{}
	for _, ow := range overwrites {
		byID[ow.ID] = ow
	}

	everyone := byID[testGuildID]
	if everyone == nil || everyone.Deny&discordgo.PermissionViewChannel == 0 || everyone.Allow != 0 {
		t.Errorf("everyone overwrite = %+v", everyone)
	}
	creator := byID[jane.UserID]
	if creator == nil || creator.Type != discordgo.PermissionOverwriteTypeMember || creator.Allow != memberAccess {
		t.Errorf("creator overwrite = %+v", creator)
	}
	staff := byID[testStaffRole]
	if staff == nil || staff.Type != discordgo.PermissionOverwriteTypeRole || staff.Allow != staffAccess {
		t.Errorf("staff overwrite = %+v", staff)
	}
	bot := byID[testBotID]
	if bot == nil || bot.Allow != staffAccess {
		t.Errorf("bot overwrite = %+v", bot)
	}
}

func closeButtons(msg *discordgo.MessageSend) int {
	count := 0
	for _, component := range msg.Components {
		row, ok := component.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if button, ok := inner.(discordgo.Button); ok && button.CustomID == CloseTicketButtonID {
				count++
			}
		}
	}
	return count
}
