package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hyperengineering/revise"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import review data from a file",
	Long: `Import review states and recommendations from a JSON export.

Merge strategies:
  skip    - Leave entries that already exist untouched (default)
  replace - Overwrite existing entries with imported versions

Examples:
  revise import -i backup.json
  revise import -i backup.json --merge-strategy replace
  revise import -i backup.json --dry-run`,
	RunE: runImport,
}

var (
	importInputPath     string
	importMergeStrategy string
	importDryRun        bool
)

func init() {
	importCmd.Flags().StringVarP(&importInputPath, "input", "i", "", "Input file path (required)")
	importCmd.Flags().StringVar(&importMergeStrategy, "merge-strategy", "skip", "Merge strategy: skip, replace")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Preview import without making changes")
	_ = importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(importCmd)
}

// ImportResultOutput for JSON output.
type ImportResultOutput struct {
	InputFile       string   `json:"input_file"`
	Strategy        string   `json:"merge_strategy"`
	DryRun          bool     `json:"dry_run"`
	States          int      `json:"states"`
	Recommendations int      `json:"recommendations"`
	Skipped         int      `json:"skipped"`
	ErrorCount      int      `json:"error_count"`
	Errors          []string `json:"errors,omitempty"`
	Duration        string   `json:"duration"`
}

func runImport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	strategy := revise.MergeStrategy(strings.ToLower(importMergeStrategy))
	switch strategy {
	case revise.MergeStrategySkip, revise.MergeStrategyReplace:
		// valid
	default:
		return fmt.Errorf("invalid merge strategy %q: must be 'skip' or 'replace'", importMergeStrategy)
	}

	f, err := os.Open(importInputPath)
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	client, err := revise.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	if !outputJSON {
		if importDryRun {
			printInfo(out, "Previewing import from %s (dry run)...", importInputPath)
		} else {
			printInfo(out, "Importing from %s...", importInputPath)
		}
	}

	start := time.Now()
	result, err := client.Store().ImportJSON(cmd.Context(), f, strategy, importDryRun)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	duration := time.Since(start)

	if outputJSON {
		return outputAsJSON(cmd, ImportResultOutput{
			InputFile:       importInputPath,
			Strategy:        string(strategy),
			DryRun:          importDryRun,
			States:          result.States,
			Recommendations: result.Recommendations,
			Skipped:         result.Skipped,
			ErrorCount:      len(result.Errors),
			Errors:          result.Errors,
			Duration:        duration.Round(time.Millisecond).String(),
		})
	}

	printSuccess(out, "Import complete (took %s)", duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  Review states:   %d\n", result.States)
	fmt.Fprintf(out, "  Recommendations: %d\n", result.Recommendations)
	if result.Skipped > 0 {
		fmt.Fprintf(out, "  Skipped:         %d\n", result.Skipped)
	}
	if len(result.Errors) > 0 {
		printWarning(out, "%d entries were rejected:", len(result.Errors))
		for _, msg := range result.Errors {
			printMuted(out, "  - %s", msg)
		}
	}
	if importDryRun {
		printMuted(out, "Dry run: no changes were written.")
	}
	return nil
}
