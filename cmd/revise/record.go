package main

import (
	"fmt"

	"github.com/hyperengineering/revise"
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a review outcome",
	Long: `Record a finished review rated 1-5 and compute the next review date.
Ratings below 3 count as a lapse and reset the item's spacing.

Example:
  revise record --user alice --item quadratics-3 --rating 4
  revise record -u alice -i quadratics-3 -r 2 --json`,
	RunE: runRecord,
}

var (
	recordUser   string
	recordItem   string
	recordRating int
)

func init() {
	recordCmd.Flags().StringVarP(&recordUser, "user", "u", "", "User ID (required)")
	recordCmd.Flags().StringVarP(&recordItem, "item", "i", "", "Item ID (required)")
	recordCmd.Flags().IntVarP(&recordRating, "rating", "r", 0, "Performance rating 1-5 (required)")

	recordCmd.MarkFlagRequired("user")
	recordCmd.MarkFlagRequired("item")
	recordCmd.MarkFlagRequired("rating")
}

func runRecord(cmd *cobra.Command, args []string) error {
	client, err := revise.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	state, err := client.RecordOutcome(cmd.Context(), recordUser, recordItem, recordRating)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}

	return outputReviewState(cmd, state)
}
