package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/config"
	"github.com/ticketdesk/ticket-bot/internal/observability"
)

const requestTimeout = 5 * time.Second

// NewServer builds the ops HTTP app with middlewares and routes registered.
func NewServer(cfg config.AppConfig, logger *zap.Logger, metrics *observability.Metrics, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})
	RegisterMiddlewares(app, logger, metrics, requestTimeout)
	RegisterRoutes(app, routes)
	return app
}
