package main

import (
	"github.com/hyperengineering/sage"
	sagemcp "github.com/hyperengineering/sage/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for coding agent integration",
	Long: `Start a Model Context Protocol (MCP) server over stdio.

This allows agent frameworks to use Sage tools directly.

Configuration example:

  {
    "mcpServers": {
      "sage": {
        "command": "sage",
        "args": ["mcp"],
        "env": {
          "SAGE_DB_PATH": "/path/to/sage.db"
        }
      }
    }
  }

Environment variables:
  SAGE_DB_PATH    Path to local SQLite database (default: derived from store)
  SAGE_STORE      Store ID to operate against
  SAGE_SOURCE_ID  Client identifier (default: hostname)
  SAGE_DEBUG      Enable debug logging when set
  SAGE_DEBUG_LOG  Debug log file path (default: stderr)`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadAndValidateConfig()
	if err != nil {
		return err
	}

	// Client persists for the server lifetime
	client, err := sage.New(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	server := sagemcp.NewServer(client)
	return server.Run()
}
