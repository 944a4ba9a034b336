// Package cmd implements the strata command line interface. Every command
// except serve and mcp talks to a running server over HTTP, so independent
// invocations coordinate through server-held state.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/strata/internal/config"
	"github.com/felixgeelhaar/strata/internal/errors"
	"github.com/felixgeelhaar/strata/internal/log"
	"github.com/felixgeelhaar/strata/pkg/strata/client"
)

var (
	cfgFile   string
	flagPlan  int64
	flagServe string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Hierarchical planning and task management",
	Long: `strata breaks complex projects into task trees across abstraction levels
(planning, isolation, ordering, implementation), tracks a current focus per
plan, and coordinates completion between concurrent agents with leases.

Start a server with 'strata serve', then drive it from any shell:

  export STRATA_PLAN=$(strata plan create --goal "Ship the feature")
  strata task add --level planning "Design the architecture"
  strata context`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if flagPlan > 0 {
			cfg.Plan = flagPlan
		}
		if flagServe != "" {
			cfg.ServerURL = flagServe
		}

		level := log.ParseLevel(cfg.LogLevel)
		format := log.ParseFormat(cfg.LogFormat)
		logCfg := log.DefaultConfig()
		logCfg.Level = level
		logCfg.Format = format
		log.SetDefaultLogger(log.New(logCfg))
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under ctx for signal cancellation.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.strata/config.yaml)")
	rootCmd.PersistentFlags().Int64Var(&flagPlan, "plan", 0, "plan id (overrides STRATA_PLAN)")
	rootCmd.PersistentFlags().StringVar(&flagServe, "server", "", "server base URL (overrides STRATA_SERVER_URL)")
}

// apiClient builds a client for the configured server.
func apiClient() *client.Client {
	return client.New(cfg.ServerURL)
}

// requirePlan returns the target plan id from --plan, STRATA_PLAN, or the
// config file.
func requirePlan() (int64, error) {
	if cfg.Plan > 0 {
		return cfg.Plan, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidOperation, "no plan selected").
		WithSuggestion("Pass --plan <id> or set STRATA_PLAN").
		WithSuggestion("Run 'strata plan list' to see available plans")
}
