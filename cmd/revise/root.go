package main

import (
	"github.com/hyperengineering/revise"
	"github.com/spf13/cobra"
)

var (
	cfgDBPath  string
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "revise",
	Short: "Revise - Adaptive review scheduling CLI",
	Long: `Revise schedules when a learner should next review an exercise.

It combines a per-item spaced-repetition model with topic-level weakness
detection from recent attempt history, producing a prioritized, deduplicated
queue of review recommendations.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDBPath, "db-path", "", "Path to review database (default: ~/.revise/reviews.db)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output in JSON format")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadConfig resolves configuration: flags win over environment variables,
// which win over defaults.
func loadConfig() revise.Config {
	cfg := revise.ConfigFromEnv()
	if cfgDBPath != "" {
		cfg.DBPath = cfgDBPath
	}
	return cfg.WithDefaults()
}
