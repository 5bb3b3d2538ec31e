package events

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPublishRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	calls := 0
	d.Subscribe(EventTicketClosed, func(context.Context, Event) error {
		calls++
		return errors.New("first failed")
	})
	d.Subscribe(EventTicketClosed, func(context.Context, Event) error {
		calls++
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		t.Error("handler for another type invoked")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketClosed, ChannelID: "c1"})
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if err == nil {
		t.Fatal("expected joined error from failing handler")
	}
}

func TestPublishWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventTicketDeleted}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPublishRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	reached := false
	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error {
		panic("subscriber bug")
	})
	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketDeleted})
	if !reached {
		t.Fatal("second handler should still run")
	}
	if err == nil || !strings.Contains(err.Error(), "subscriber bug") {
		t.Fatalf("err = %v", err)
	}
}
