package main

import (
	"github.com/hyperengineering/revise"
	revisemcp "github.com/hyperengineering/revise/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for coding agent integration",
	Long: `Start a Model Context Protocol (MCP) server over stdio.

This exposes the review scheduling tools to MCP clients such as coding
agents and tutoring front-ends.

Configuration example (~/.claude/claude_desktop_config.json):

  {
    "mcpServers": {
      "revise": {
        "command": "revise",
        "args": ["mcp"],
        "env": {
          "REVISE_DB_PATH": "/path/to/reviews.db"
        }
      }
    }
  }

Environment variables:
  REVISE_DB_PATH      Path to SQLite review database
  REVISE_WINDOW_DAYS  Active-user window in days (default: 30)
  REVISE_BATCH_SIZE   Users per batch run (default: 100)
  REVISE_WORKERS      Batch worker pool size (default: 4)`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// The client persists for the server lifetime
	client, err := revise.New(loadConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	server := revisemcp.NewServer(client)
	return server.Run()
}
