package main

import (
	"fmt"
	"os"

	"github.com/relaydesk/relaydesk/internal/cli"
	"github.com/relaydesk/relaydesk/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "relay",
		Short: "Relaydesk CLI - customer query escalation routing",
		Long: `Relaydesk CLI provides commands to route customer queries and inspect the server.

Environment variables:
  RELAY_API_KEY   API key for authentication (optional for unauthenticated servers)
  RELAY_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.MatchCmd())
	rootCmd.AddCommand(client.TopicsCmd())
	rootCmd.AddCommand(client.HealthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
