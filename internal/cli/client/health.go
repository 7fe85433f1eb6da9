package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// TierHealth represents one tier's status in the health response.
type TierHealth struct {
	Loaded  bool `json:"loaded"`
	Entries int  `json:"entries"`
}

// HealthResponse represents the health API response.
type HealthResponse struct {
	Status  string                `json:"status"`
	Version string                `json:"version,omitempty"`
	Tiers   map[string]TierHealth `json:"tiers"`
}

// HealthCmd creates the health command.
func HealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/health")
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			var healthResp HealthResponse
			if err := json.Unmarshal(resp.Data, &healthResp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(healthResp, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Printf("status: %s", healthResp.Status)
			if healthResp.Version != "" {
				fmt.Printf(" (version %s)", healthResp.Version)
			}
			fmt.Println()
			for name, tier := range healthResp.Tiers {
				if tier.Loaded {
					fmt.Printf("  %s: %d entries\n", name, tier.Entries)
				} else {
					fmt.Printf("  %s: not loaded\n", name)
				}
			}
			return nil
		},
	}
}
