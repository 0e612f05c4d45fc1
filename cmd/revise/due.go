package main

import (
	"fmt"

	"github.com/hyperengineering/revise"
	"github.com/spf13/cobra"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List due review recommendations",
	Long: `List a user's due review recommendations, earliest first with higher
priority breaking ties.

Example:
  revise due --user alice
  revise due -u alice --limit 20 --json`,
	RunE: runDue,
}

var (
	dueUser  string
	dueLimit int
)

func init() {
	dueCmd.Flags().StringVarP(&dueUser, "user", "u", "", "User ID (required)")
	dueCmd.Flags().IntVar(&dueLimit, "limit", 0, "Maximum recommendations to list (default: 10)")

	dueCmd.MarkFlagRequired("user")
}

func runDue(cmd *cobra.Command, args []string) error {
	client, err := revise.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	recs, err := client.DueFor(dueUser, dueLimit)
	if err != nil {
		return fmt.Errorf("list due reviews: %w", err)
	}

	return outputDueReviews(cmd, recs)
}
