package main

import (
	"fmt"
	"os"
	"time"

	"github.com/hyperengineering/revise"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export review data to a file",
	Long: `Export all review states and pending recommendations to a JSON file.

The export streams data to avoid memory issues with large databases.

Examples:
  revise export -o backup.json
  revise export --output backup.json --json`,
	RunE: runExport,
}

var exportOutputPath string

func init() {
	exportCmd.Flags().StringVarP(&exportOutputPath, "output", "o", "", "Output file path (required)")
	_ = exportCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(exportCmd)
}

// ExportResult for JSON output.
type ExportResult struct {
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
	Duration string `json:"duration"`
}

func runExport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	client, err := revise.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	if !outputJSON {
		printInfo(out, "Exporting to %s...", exportOutputPath)
	}

	start := time.Now()

	f, err := os.Create(exportOutputPath)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	if err := client.Store().ExportJSON(cmd.Context(), f); err != nil {
		f.Close()
		os.Remove(exportOutputPath)
		return fmt.Errorf("export failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}

	duration := time.Since(start)

	var fileSize int64
	if fi, err := os.Stat(exportOutputPath); err == nil {
		fileSize = fi.Size()
	}

	if outputJSON {
		return outputAsJSON(cmd, ExportResult{
			FilePath: exportOutputPath,
			FileSize: fileSize,
			Duration: duration.Round(time.Millisecond).String(),
		})
	}

	printSuccess(out, "Export complete (took %s)", duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  File: %s (%d bytes)\n", exportOutputPath, fileSize)
	return nil
}
