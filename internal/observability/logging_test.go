package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ticketdesk/ticket-bot/internal/config"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"":      zapcore.InfoLevel,
		"noisy": zapcore.InfoLevel,
	}
	for in, want := range cases {
		logger, err := NewLogger(config.LoggerConfig{Level: in})
		if err != nil {
			t.Fatalf("NewLogger(%q): %v", in, err)
		}
		if !logger.Core().Enabled(want) {
			t.Errorf("level %q: %s should be enabled", in, want)
		}
		if want > zapcore.DebugLevel && logger.Core().Enabled(want-1) {
			t.Errorf("level %q: %s should be disabled", in, want-1)
		}
	}
}

func TestSetupTracingDisabled(t *testing.T) {
	shutdown := SetupTracing(context.Background(), "ticketbot", "test", config.TelemetryConfig{}, zap.NewNop())
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
