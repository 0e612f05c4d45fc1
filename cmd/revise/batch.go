package main

import (
	"fmt"
	"time"

	"github.com/hyperengineering/revise"
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run one scheduling cycle",
	Long: `Run one scheduling cycle over all recently active users.

For each user, weak topics and spaced-repetition due dates are evaluated
and new recommendations are written into the queue. Intended to be invoked
from cron or a job runner.

Example:
  revise batch
  revise batch --json`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	client, err := revise.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	start := time.Now()
	result, err := client.RunBatch(cmd.Context())
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}
	duration := time.Since(start)

	if outputJSON {
		return outputAsJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	printSuccess(out, "Batch complete (took %s)", duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  Users processed: %d\n", result.UsersProcessed)
	if result.UsersFailed > 0 {
		printWarning(out, "Users failed: %d", result.UsersFailed)
	}
	fmt.Fprintf(out, "  Recommendations enqueued: %d\n", result.Enqueued)
	return nil
}
