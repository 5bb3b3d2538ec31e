package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/api/http/handlers"
	"github.com/ticketdesk/ticket-bot/internal/config"
	"github.com/ticketdesk/ticket-bot/internal/observability"
)

type gatewayStub bool

func (g gatewayStub) Connected() bool { return bool(g) }

type depStub struct {
	configured bool
	err        error
}

func (d depStub) Configured() bool { return d.configured }

func (d depStub) Ping(context.Context) error { return d.err }

type counterStub struct {
	open int
	err  error
}

func (c counterStub) CountOpenTickets(context.Context, string) (int, error) { return c.open, c.err }

func newTestServer(gateway bool, deps map[string]handlers.Dependency, counter handlers.TicketCounter, metrics *observability.Metrics) *fiber.App {
	return NewServer(config.AppConfig{Name: "ticket-bot"}, zap.NewNop(), metrics, RouteConfig{
		Health: handlers.NewHealthHandler("ticket-bot", "test", gatewayStub(gateway), deps),
		Stats:  handlers.NewStatsHandler(counter, metrics, "guild-1"),
	})
}

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	body := map[string]any{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return resp.StatusCode, body
}

func TestLive(t *testing.T) {
	app := newTestServer(false, nil, nil, observability.NewMetrics())
	status, body := getJSON(t, app, "/health/live")
	if status != 200 || body["status"] != "alive" {
		t.Fatalf("status=%d body=%v", status, body)
	}
}

func TestReady(t *testing.T) {
	cases := []struct {
		name    string
		gateway bool
		deps    map[string]handlers.Dependency
		want    int
	}{
		{"all ok", true, map[string]handlers.Dependency{"postgres": depStub{configured: true}}, 200},
		{"disabled deps ignored", true, map[string]handlers.Dependency{"redis": depStub{}}, 200},
		{"gateway down", false, nil, 503},
		{"postgres down", true, map[string]handlers.Dependency{"postgres": depStub{configured: true, err: errors.New("refused")}}, 503},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestServer(tc.gateway, tc.deps, nil, observability.NewMetrics())
			status, body := getJSON(t, app, "/health/ready")
			if status != tc.want {
				t.Fatalf("status=%d body=%v", status, body)
			}
		})
	}
}

func TestStats(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.Inc(observability.MetricTicketsCreated)
	app := newTestServer(true, nil, counterStub{open: 3}, metrics)

	status, body := getJSON(t, app, "/stats")
	if status != 200 {
		t.Fatalf("status=%d body=%v", status, body)
	}
	data := body["data"].(map[string]any)
	if data["open_tickets"] != float64(3) || data["guild_id"] != "guild-1" {
		t.Errorf("data = %v", data)
	}
	counters := data["counters"].(map[string]any)
	if counters[observability.MetricTicketsCreated] != float64(1) {
		t.Errorf("counters = %v", counters)
	}
}

func TestStatsUpstreamFailure(t *testing.T) {
	app := newTestServer(true, nil, counterStub{err: errors.New("gateway timeout")}, observability.NewMetrics())

	status, body := getJSON(t, app, "/stats?guild_id=guild-2")
	if status != 502 {
		t.Fatalf("status=%d body=%v", status, body)
	}
	errBody := body["error"].(map[string]any)
	if errBody["code"] != "INTERNAL_ERROR" {
		t.Errorf("error = %v", errBody)
	}
}
