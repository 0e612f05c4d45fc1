package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	if outputJSON {
		return outputAsJSON(cmd, map[string]string{
			"version":  version,
			"commit":   commit,
			"date":     date,
			"go":       runtime.Version(),
			"platform": runtime.GOOS + "/" + runtime.GOARCH,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "revise %s (commit %s, built %s)\n", version, commit, date)
	printMuted(out, "%s on %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}
