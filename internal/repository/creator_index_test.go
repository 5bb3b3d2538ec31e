package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ticketdesk/ticket-bot/internal/domain"
)

func newSQLiteIndex(t *testing.T) CreatorIndex {
	t.Helper()
	idx, err := NewSQLiteCreatorIndex(filepath.Join(t.TempDir(), "nested", "tickets.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestCreatorIndexes(t *testing.T) {
	backends := map[string]func(t *testing.T) CreatorIndex{
		"memory": func(*testing.T) CreatorIndex { return NewMemoryCreatorIndex() },
		"sqlite": newSQLiteIndex,
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			idx := open(t)

			created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			record := &domain.TicketRecord{
				ChannelID:   "chan-1",
				GuildID:     "guild-1",
				CategoryID:  "cat-1",
				CreatorID:   "user-1",
				CreatorName: "jane",
				Name:        "Inquire-001",
				Number:      1,
				CreatedAt:   created,
			}
			if err := idx.Put(ctx, record); err != nil {
				t.Fatalf("put: %v", err)
			}

			got, err := idx.Get(ctx, "chan-1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.CreatorID != "user-1" || got.Name != "Inquire-001" || got.Number != 1 {
				t.Errorf("unexpected record: %+v", got)
			}
			if !got.CreatedAt.Equal(created) {
				t.Errorf("created_at = %s, want %s", got.CreatedAt, created)
			}

			record.CreatorName = "jane-renamed"
			if err := idx.Put(ctx, record); err != nil {
				t.Fatalf("re-put: %v", err)
			}
			got, _ = idx.Get(ctx, "chan-1")
			if got.CreatorName != "jane-renamed" {
				t.Errorf("upsert not applied: %q", got.CreatorName)
			}

			if err := idx.Delete(ctx, "chan-1"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := idx.Get(ctx, "chan-1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("get after delete: %v, want ErrNotFound", err)
			}
			if err := idx.Delete(ctx, "missing"); err != nil {
				t.Fatalf("delete missing: %v", err)
			}
		})
	}
}
