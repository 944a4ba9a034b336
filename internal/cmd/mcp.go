package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/strata/internal/log"
	"github.com/felixgeelhaar/strata/internal/mcp"
	"github.com/felixgeelhaar/strata/internal/plan"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Long: `Expose the plan engine as MCP tools over stdin/stdout for automated
callers. The server holds its own in-memory store for the lifetime of the
stdio session.

STRATA_PLAN (or --plan) sets the default plan for tool calls that omit
plan_id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol; log to stderr only.
		logCfg := log.DefaultConfig()
		logger := log.New(logCfg)
		log.SetDefaultLogger(logger)

		store := plan.NewStore(logger)
		defer store.Close()

		return mcp.ServeStdio(mcp.New(store, cfg.Plan))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
