// Package cli implements the ticketbot commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ticketdesk/ticket-bot/internal/config"
	"github.com/ticketdesk/ticket-bot/internal/observability"
)

var envFiles []string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "ticketbot",
	Short:         "Support ticket bot for Discord guilds",
	Long:          "Opens private ticket channels, archives transcripts when they close and removes the channel after a grace delay.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	RootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Env files to load before reading configuration (default: .env when present)")
}

// loadConfig reads and validates configuration and builds the logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
