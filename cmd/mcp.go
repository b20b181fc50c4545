package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/p4x/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for editor integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an MCP client query the changelist state natively. Configure with:

  {
    "mcpServers": {
      "p4x": { "command": "p4x", "args": ["mcp"] }
    }
  }

Available tools: p4x_changelists, p4x_changelist_files, p4x_opened,
p4x_refresh, p4x_history`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := getWorkspace()
		if err != nil {
			return err
		}

		// dataStore was initialized (or degraded to nil) by getWorkspace
		srv := mcp.NewServer(w, dataStore)
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
