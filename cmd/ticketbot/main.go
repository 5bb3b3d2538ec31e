package main

import (
	"os"

	"github.com/ticketdesk/ticket-bot/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
