package main

import (
	"fmt"
	"os"

	"github.com/relaydesk/relaydesk/internal/cli"
	"github.com/relaydesk/relaydesk/internal/cli/admin"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "relayd",
		Short:   "Relaydesk daemon and admin CLI",
		Long:    "Relaydesk daemon for running the query routing server and inspecting knowledge bases",
		Version: version,
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd(version))
	rootCmd.AddCommand(admin.KBCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
