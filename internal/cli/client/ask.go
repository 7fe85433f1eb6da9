package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskRequest represents the query API request.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse represents the query API response.
type AskResponse struct {
	Outcome    string         `json:"outcome"`
	Answer     string         `json:"answer,omitempty"`
	Tier       string         `json:"tier,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Category   string         `json:"category,omitempty"`
	Reply      string         `json:"reply,omitempty"`
	Scores     map[string]int `json:"scores,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <query...>",
		Short: "Route a customer query",
		Long:  "Sends a query through the two-tier escalation flow and prints the decision.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, strings.Join(args, " "), outputJSON)
		},
	}

	return cmd
}

func runAsk(cmd *cobra.Command, query string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/query", AskRequest{Query: query})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	var askResp AskResponse
	if err := json.Unmarshal(resp.Data, &askResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(askResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	switch askResp.Outcome {
	case "answered":
		fmt.Println(askResp.Answer)
		fmt.Printf("\n(answered by %s tier, score %d)\n", askResp.Tier, askResp.Scores[askResp.Tier])
	case "escalated":
		if askResp.Reply != "" {
			fmt.Println(askResp.Reply)
		} else {
			fmt.Println("No knowledge base answer; escalated for model-generated resolution.")
		}
		if askResp.Category != "" {
			fmt.Printf("\n(flagged category: %s)\n", askResp.Category)
		}
	default:
		fmt.Printf("Query not resolved: %s\n", askResp.Reason)
	}

	return nil
}
