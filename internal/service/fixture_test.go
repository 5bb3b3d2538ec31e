package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ticketdesk/ticket-bot/internal/clock"
	"github.com/ticketdesk/ticket-bot/internal/config"
	"github.com/ticketdesk/ticket-bot/internal/events"
	"github.com/ticketdesk/ticket-bot/internal/observability"
	"github.com/ticketdesk/ticket-bot/internal/platformtest"
	"github.com/ticketdesk/ticket-bot/internal/repository"
)

const (
	testGuildID   = "guild-1"
	testBotID     = "bot-1"
	testStaffRole = "role-staff"
)

type fixture struct {
	platform   *platformtest.Fake
	clock      *clock.FakeClock
	index      repository.CreatorIndex
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	published  []events.Event
	category   *discordgo.Channel
	archive    *discordgo.Channel
	svc        *TicketService
}

func newFixture(t *testing.T, mode config.TicketMode) *fixture {
	t.Helper()
	f := &fixture{
		platform:   platformtest.New(testBotID),
		clock:      clock.Fake(time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)),
		index:      repository.NewMemoryCreatorIndex(),
		metrics:    observability.NewMetrics(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	f.category = f.platform.AddCategory(testGuildID, "Tickets")
	f.archive = f.platform.AddCategory(testGuildID, "Transcripts")

	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketClosed,
		events.EventTranscriptArchived,
		events.EventTicketDeleted,
	} {
		f.dispatcher.Subscribe(eventType, f.record)
	}

	f.svc = NewTicketService(TicketDependencies{
		Platform:   f.platform,
		Index:      f.index,
		Dispatcher: f.dispatcher,
		Clock:      f.clock,
		Metrics:    f.metrics,
		Config: config.TicketsConfig{
			StaffRoleID:       testStaffRole,
			CategoryID:        f.category.ID,
			ArchiveCategoryID: f.archive.ID,
			Mode:              mode,
			DeleteDelay:       5 * time.Second,
			PageSize:          100,
			BrandName:         "Test Studio",
		},
	})
	return f
}

func (f *fixture) record(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fixture) eventTypes() []events.EventType {
	out := make([]events.EventType, 0, len(f.published))
	for _, e := range f.published {
		out = append(out, e.Type)
	}
	return out
}
