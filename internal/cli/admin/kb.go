package admin

import (
	"fmt"

	"github.com/relaydesk/relaydesk/internal/domain"
	"github.com/relaydesk/relaydesk/internal/kb"
	"github.com/spf13/cobra"
)

// KBCmd returns the kb command group
func KBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect knowledge base files",
	}

	cmd.AddCommand(kbValidateCmd())
	cmd.AddCommand(kbStatsCmd())

	return cmd
}

func kbValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a knowledge base CSV file",
		Long:  "Parse a knowledge base CSV file and report schema or row errors without starting the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tierFlag, _ := cmd.Flags().GetString("tier")
			tier, err := domain.ParseTier(tierFlag)
			if err != nil {
				return err
			}

			base, err := kb.LoadFile(args[0], tier)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			if base.IsEmpty() {
				fmt.Printf("%s: valid but empty (every query will miss this tier)\n", args[0])
				return nil
			}

			fmt.Printf("%s: valid, %d entries\n", args[0], base.Len())
			return nil
		},
	}

	cmd.Flags().String("tier", "general", "Tier to validate as (general or senior)")

	return cmd
}

func kbStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Print statistics for a knowledge base CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tierFlag, _ := cmd.Flags().GetString("tier")
			tier, err := domain.ParseTier(tierFlag)
			if err != nil {
				return err
			}

			base, err := kb.LoadFile(args[0], tier)
			if err != nil {
				return err
			}

			var minLen, maxLen, total int
			for i := 0; i < base.Len(); i++ {
				entry := base.Entry(i)
				n := len(entry.Question)
				if i == 0 || n < minLen {
					minLen = n
				}
				if n > maxLen {
					maxLen = n
				}
				total += n
			}

			fmt.Printf("file:     %s\n", args[0])
			fmt.Printf("tier:     %s\n", tier)
			fmt.Printf("entries:  %d\n", base.Len())
			if base.Len() > 0 {
				fmt.Printf("question length: min=%d max=%d avg=%d\n",
					minLen, maxLen, total/base.Len())
			}
			return nil
		},
	}

	cmd.Flags().String("tier", "general", "Tier to load as (general or senior)")

	return cmd
}
