package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/ticketdesk/ticket-bot/internal/api/http"
	"github.com/ticketdesk/ticket-bot/internal/api/http/handlers"
	"github.com/ticketdesk/ticket-bot/internal/bot"
	"github.com/ticketdesk/ticket-bot/internal/clock"
	"github.com/ticketdesk/ticket-bot/internal/config"
	"github.com/ticketdesk/ticket-bot/internal/discord"
	"github.com/ticketdesk/ticket-bot/internal/events"
	"github.com/ticketdesk/ticket-bot/internal/observability"
	"github.com/ticketdesk/ticket-bot/internal/persistence"
	"github.com/ticketdesk/ticket-bot/internal/repository"
	"github.com/ticketdesk/ticket-bot/internal/service"
	"github.com/ticketdesk/ticket-bot/internal/worker"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Connect to the gateway and serve ticket interactions",
		RunE:  runBot,
	})
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.SetupTracing(ctx, cfg.App.Name, cfg.App.Version, cfg.Telemetry, logger)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	index, err := openCreatorIndex(cfg.Index, rdb)
	if err != nil {
		return err
	}
	defer index.Close()
	logger.Info("creator index ready", zap.String("backend", cfg.Index.Backend))

	client, err := discord.NewClient(cfg.Discord, logger)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	tickets := service.NewTicketService(service.TicketDependencies{
		Platform:   client,
		Index:      index,
		Dispatcher: dispatcher,
		Clock:      clock.Real(),
		Logger:     logger,
		Metrics:    metrics,
		Config:     cfg.Tickets,
	})
	audit := service.NewAuditService(dispatcher, repository.NewTicketHistoryRepository(pg.PoolHandle()), logger)
	presence := service.NewPresenceService(tickets, client, dispatcher, logger)
	worker.StartLifecycleWorkers(audit, presence)

	bot.New(bot.Dependencies{
		Tickets:   tickets,
		Presence:  presence,
		Platform:  client,
		Responder: client,
		Guilds:    client,
		Commands:  client,
		Config:    *cfg,
		Logger:    logger,
		Metrics:   metrics,
	}).Register(client.Session())

	if err := client.Open(); err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	var app *fiber.App
	if cfg.App.HealthEnabled {
		app = httptransport.NewServer(cfg.App, logger, metrics, httptransport.RouteConfig{
			Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, client, map[string]handlers.Dependency{
				"postgres": pg,
				"redis":    rdb,
			}),
			Stats: handlers.NewStatsHandler(tickets, metrics, cfg.Discord.GuildID),
		})
		go func() {
			if err := app.Listen(cfg.App.Addr()); err != nil {
				logger.Error("ops server stopped", zap.Error(err))
			}
		}()
	}

	logger.Info("ticket bot running",
		zap.String("mode", string(cfg.Tickets.Mode)),
		zap.Duration("delete_delay", cfg.Tickets.DeleteDelay))
	<-ctx.Done()
	logger.Info("shutting down")

	if app != nil {
		if err := app.Shutdown(); err != nil {
			logger.Warn("ops server shutdown failed", zap.Error(err))
		}
	}
	return nil
}

// openCreatorIndex builds the creator index selected by cfg.Backend.
func openCreatorIndex(cfg config.IndexConfig, rdb *persistence.Redis) (repository.CreatorIndex, error) {
	switch cfg.Backend {
	case "memory":
		return repository.NewMemoryCreatorIndex(), nil
	case "redis":
		if !rdb.Configured() {
			return nil, fmt.Errorf("creator index backend redis requires REDIS_ADDR")
		}
		return repository.NewRedisCreatorIndex(rdb.Client, cfg.RedisKey), nil
	case "sqlite", "":
		index, err := repository.NewSQLiteCreatorIndex(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite creator index: %w", err)
		}
		return index, nil
	default:
		return nil, fmt.Errorf("unknown creator index backend %q", cfg.Backend)
	}
}
