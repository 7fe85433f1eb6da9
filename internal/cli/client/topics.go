package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Topic represents one sensitive-topic rule.
type Topic struct {
	Category      string   `json:"category"`
	Keywords      []string `json:"keywords"`
	FuzzyDistance int      `json:"fuzzy_distance"`
}

// TopicListResponse represents the topics API response.
type TopicListResponse struct {
	Topics []Topic `json:"topics"`
}

// ClassifyResponse represents the classify API response.
type ClassifyResponse struct {
	Sensitive bool   `json:"sensitive"`
	Category  string `json:"category,omitempty"`
	Keyword   string `json:"keyword,omitempty"`
}

// TopicsCmd creates the topics command group.
func TopicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Inspect the sensitive-topic vocabulary",
	}

	cmd.AddCommand(topicsListCmd())
	cmd.AddCommand(topicsClassifyCmd())

	return cmd
}

func topicsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sensitive-topic categories and keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/topics")
			if err != nil {
				return fmt.Errorf("failed to list topics: %w", err)
			}

			var listResp TopicListResponse
			if err := json.Unmarshal(resp.Data, &listResp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(listResp, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			for _, topic := range listResp.Topics {
				fmt.Printf("%s (fuzzy distance %d)\n", topic.Category, topic.FuzzyDistance)
				fmt.Printf("  %s\n", strings.Join(topic.Keywords, ", "))
			}
			return nil
		},
	}
}

func topicsClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text...>",
		Short: "Classify text against the sensitive-topic vocabulary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Post("/topics/classify", AskRequest{Query: strings.Join(args, " ")})
			if err != nil {
				return fmt.Errorf("classification failed: %w", err)
			}

			var classifyResp ClassifyResponse
			if err := json.Unmarshal(resp.Data, &classifyResp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(classifyResp, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if classifyResp.Sensitive {
				fmt.Printf("sensitive: %s (keyword %q)\n", classifyResp.Category, classifyResp.Keyword)
			} else {
				fmt.Println("not sensitive")
			}
			return nil
		},
	}
}
