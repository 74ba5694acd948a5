package cmd

import (
	"github.com/spf13/cobra"

	"testwright/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for Claude Code integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets Claude Code score tests, classify features, and check
coverage and release gates natively. Configure in Claude Code with:

  {
    "mcpServers": {
      "testwright": { "command": "testwright", "args": ["mcp"] }
    }
  }

Available tools: score_test, classify_feature, coverage_report,
release_confidence, validate_pr`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}
		classifier, err := getClassifier()
		if err != nil {
			return err
		}

		srv := mcp.NewServer(s, classifier)
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
