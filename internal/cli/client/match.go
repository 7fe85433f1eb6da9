package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// MatchResponse represents the per-tier match API response.
type MatchResponse struct {
	Tier      string `json:"tier"`
	Outcome   string `json:"outcome"`
	Answer    string `json:"answer,omitempty"`
	Sentinel  string `json:"sentinel,omitempty"`
	Score     int    `json:"score"`
	Threshold int    `json:"threshold"`
}

// MatchCmd creates the match command.
func MatchCmd() *cobra.Command {
	var tier string

	cmd := &cobra.Command{
		Use:   "match <query...>",
		Short: "Match a query against a single tier",
		Long:  "Runs the fuzzy matcher for one tier without the escalation flow, showing the score and threshold.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runMatch(cmd, tier, strings.Join(args, " "), outputJSON)
		},
	}

	cmd.Flags().StringVarP(&tier, "tier", "t", "general", "Tier to match against (general or senior)")

	return cmd
}

func runMatch(cmd *cobra.Command, tier, query string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/kb/"+tier+"/match", AskRequest{Query: query})
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	var matchResp MatchResponse
	if err := json.Unmarshal(resp.Data, &matchResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(matchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("tier:      %s\n", matchResp.Tier)
	fmt.Printf("score:     %d (threshold %d)\n", matchResp.Score, matchResp.Threshold)
	if matchResp.Outcome == "answer" {
		fmt.Printf("answer:    %s\n", matchResp.Answer)
	} else {
		fmt.Printf("no match:  %s\n", matchResp.Sentinel)
	}

	return nil
}
