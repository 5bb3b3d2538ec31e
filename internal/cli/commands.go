package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ticketdesk/ticket-bot/internal/bot"
	"github.com/ticketdesk/ticket-bot/internal/discord"
)

func init() {
	commandsCmd := &cobra.Command{
		Use:   "commands",
		Short: "Manage the bot's slash commands",
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Register /close and /setup-ticket-panel with Discord",
		RunE:  runCommandsSync,
	}
	syncCmd.Flags().String("guild", "", "Guild to register in (default: $DISCORD_GUILD_ID, or global when empty)")
	syncCmd.Flags().Duration("timeout", 30*time.Second, "Time allowed for the sync")

	commandsCmd.AddCommand(syncCmd)
	RootCmd.AddCommand(commandsCmd)
}

func runCommandsSync(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	guildID, _ := cmd.Flags().GetString("guild")
	if guildID == "" {
		guildID = cfg.Discord.GuildID
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	client, err := discord.NewClient(cfg.Discord, logger)
	if err != nil {
		return err
	}
	// The application id defaults to the bot user, which is only known
	// after the gateway handshake.
	if cfg.Discord.ApplicationID == "" {
		if err := client.Open(); err != nil {
			return err
		}
		defer client.Close() //nolint:errcheck
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	if err := client.SyncCommands(ctx, cfg.Discord.ApplicationID, guildID, bot.Commands()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "synced %d commands\n", len(bot.Commands()))
	return nil
}
