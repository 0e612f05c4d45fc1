package main

import (
	"fmt"

	"github.com/hyperengineering/revise"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a user's review statistics",
	Long: `Display review statistics for a user: total and due reviews, average
performance rating, and the 30-day retention rate.

Example:
  revise stats --user alice
  revise stats -u alice --topics`,
	RunE: runStats,
}

var (
	statsUser   string
	statsTopics bool
)

func init() {
	statsCmd.Flags().StringVarP(&statsUser, "user", "u", "", "User ID (required)")
	statsCmd.Flags().BoolVar(&statsTopics, "topics", false, "Include weak-topic breakdown")

	statsCmd.MarkFlagRequired("user")
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := revise.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	stats, err := client.UserStats(statsUser)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	var topics []revise.WeakTopic
	if statsTopics {
		topics, err = client.TopWeakTopics(statsUser, 0)
		if err != nil {
			return fmt.Errorf("get weak topics: %w", err)
		}
	}

	if outputJSON {
		if statsTopics {
			return outputAsJSON(cmd, map[string]any{
				"stats":       stats,
				"weak_topics": topics,
			})
		}
		return outputAsJSON(cmd, stats)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Review Statistics: %s\n", statsUser)
	fmt.Fprintln(out, "---------------------------")
	fmt.Fprintf(out, "Total reviews:       %d\n", stats.TotalReviews)
	fmt.Fprintf(out, "Due reviews:         %d\n", stats.DueReviews)
	fmt.Fprintf(out, "Average performance: %.2f\n", stats.AveragePerformance)
	fmt.Fprintf(out, "30-day retention:    %.1f%%\n", stats.RetentionRate)

	if statsTopics {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Weak Topics")
		fmt.Fprintln(out, "-----------")
		if len(topics) == 0 {
			printMuted(out, "No weak topics in the recent attempt window.")
		}
		for _, wt := range topics {
			fmt.Fprintf(out, "%-20s %.0f%% error rate (%d attempts)\n",
				wt.Topic, wt.ErrorRate*100, wt.AttemptsCount)
		}
	}

	return nil
}
