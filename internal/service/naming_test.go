package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"pgregory.net/rapid"

	"github.com/ticketdesk/ticket-bot/internal/config"
	"github.com/ticketdesk/ticket-bot/internal/platformtest"
)

func TestNormalizeUsername(t *testing.T) {
	cases := map[string]string{
		"Jane_Doe!!":                 "jane-doe--",
		"bob":                        "bob",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ": "abcdefghijklmnopqrst",
		"élan.vital":                 "-lan-vital",
		"":                           "",
		"user 42":                    "user-42",
	}
	for in, want := range cases {
		if got := NormalizeUsername(in); got != want {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeUsernameProperties(t *testing.T) {
	slugShape := regexp.MustCompile(`^[a-z0-9-]{0,20}$`)
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.String().Draw(rt, "username")
		slug := NormalizeUsername(name)
		if !slugShape.MatchString(slug) {
			rt.Fatalf("NormalizeUsername(%q) = %q, not a valid slug", name, slug)
		}
		if again := NormalizeUsername(slug); again != slug {
			rt.Fatalf("not idempotent: %q -> %q", slug, again)
		}
	})
}

func TestFormatTicketNumber(t *testing.T) {
	cases := map[int]string{1: "001", 42: "042", 999: "999", 1000: "1000", 12345: "12345"}
	for n, want := range cases {
		if got := FormatTicketNumber(n); got != want {
			t.Errorf("FormatTicketNumber(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestNextTicketNumberSequential(t *testing.T) {
	f := newFixture(t, config.TicketModeSequential)
	ctx := context.Background()

	if got := f.svc.NextTicketNumber(ctx, testGuildID, f.category.ID, ""); got != 1 {
		t.Fatalf("empty category: got %d, want 1", got)
	}

	other := f.platform.AddCategory(testGuildID, "Elsewhere")
	f.platform.AddTextChannel(testGuildID, f.category.ID, "Inquire-001")
	f.platform.AddTextChannel(testGuildID, f.category.ID, "inquire-007")
	f.platform.AddTextChannel(testGuildID, f.category.ID, "Inquire-abc")
	f.platform.AddTextChannel(testGuildID, f.category.ID, "general")
	f.platform.AddTextChannel(testGuildID, other.ID, "Inquire-050")

	if got := f.svc.NextTicketNumber(ctx, testGuildID, f.category.ID, ""); got != 8 {
		t.Fatalf("got %d, want 8", got)
	}
}

func TestNextTicketNumberPerUser(t *testing.T) {
	f := newFixture(t, config.TicketModePerUser)
	ctx := context.Background()

	f.platform.AddTextChannel(testGuildID, f.category.ID, "support-jane-002")
	f.platform.AddTextChannel(testGuildID, f.category.ID, "support-bob-009")

	if got := f.svc.NextTicketNumber(ctx, testGuildID, f.category.ID, "jane"); got != 3 {
		t.Errorf("jane: got %d, want 3", got)
	}
	if got := f.svc.NextTicketNumber(ctx, testGuildID, f.category.ID, "alice"); got != 1 {
		t.Errorf("alice: got %d, want 1", got)
	}
}

func TestNextTicketNumberUnreadableCategory(t *testing.T) {
	f := newFixture(t, config.TicketModeSequential)
	f.platform.AddTextChannel(testGuildID, f.category.ID, "Inquire-004")
	f.platform.Fail(platformtest.OpGuildChannels, errors.New("gateway timeout"))

	if got := f.svc.NextTicketNumber(context.Background(), testGuildID, f.category.ID, ""); got != 1 {
		t.Fatalf("got %d, want 1 on read failure", got)
	}
}

func TestNextTicketNumberIsMaxPlusOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t, config.TicketModeSequential)
		numbers := rapid.SliceOfN(rapid.IntRange(1, 5000), 0, 30).Draw(rt, "numbers")

		highest := 0
		for _, n := range numbers {
			f.platform.AddTextChannel(testGuildID, f.category.ID, fmt.Sprintf("Inquire-%03d", n))
			if n > highest {
				highest = n
			}
		}

		got := f.svc.NextTicketNumber(context.Background(), testGuildID, f.category.ID, "")
		if got != highest+1 {
			rt.Fatalf("numbers %v: got %d, want %d", numbers, got, highest+1)
		}
	})
}

func TestNamingPatterns(t *testing.T) {
	seq := Naming{Mode: config.TicketModeSequential}
	if got := seq.ChannelName("ignored", 12); got != "Inquire-012" {
		t.Errorf("sequential name = %q", got)
	}
	if !seq.HasTicketPrefix("INQUIRE-001") || seq.HasTicketPrefix("support-bob-001") {
		t.Error("sequential prefix filter mismatch")
	}

	perUser := Naming{Mode: config.TicketModePerUser}
	if got := perUser.ChannelName("jane-doe--", 1); got != "support-jane-doe---001" {
		t.Errorf("per-user name = %q", got)
	}
	if !perUser.Pattern("").MatchString("support-anyone-010") {
		t.Error("generic per-user pattern should match any user")
	}
	if perUser.Pattern("jane").MatchString("support-janet-001") {
		t.Error("per-user pattern must not match another user's slug")
	}
}
