package discord

import (
	"testing"

	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/bot"
	"github.com/ticketdesk/ticket-bot/internal/config"
	"github.com/ticketdesk/ticket-bot/internal/service"
)

var (
	_ service.Platform       = (*Client)(nil)
	_ service.PresenceSetter = (*Client)(nil)
	_ bot.Responder          = (*Client)(nil)
	_ bot.GuildManager       = (*Client)(nil)
	_ bot.CommandSyncer      = (*Client)(nil)
)

func TestNewClientBeforeConnect(t *testing.T) {
	client, err := NewClient(config.DiscordConfig{Token: "test-token"}, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	session := client.Session()
	if session.Token != "Bot test-token" {
		t.Errorf("token = %q", session.Token)
	}
	if session.Identify.Intents != Intents {
		t.Errorf("intents = %v, want %v", session.Identify.Intents, Intents)
	}
	if client.Connected() {
		t.Error("client should not report connected before Open")
	}
	if client.BotUserID() != "" {
		t.Error("bot user id is unknown before the ready event")
	}
}
