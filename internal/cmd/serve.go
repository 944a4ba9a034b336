package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/strata/internal/log"
	"github.com/felixgeelhaar/strata/internal/plan"
	"github.com/felixgeelhaar/strata/internal/server"
)

var (
	serveAddress string
	serveExample bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the strata server",
	Long: `Run the HTTP server that holds all plan state. CLI commands and the web
viewer (/ui) talk to it; stop it and the in-memory plans are gone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := log.ParseLevel(cfg.LogLevel)
		logCfg := log.ServerConfig()
		logCfg.Level = level
		logger := log.New(logCfg)
		log.SetDefaultLogger(logger)

		store := plan.NewStore(logger)
		if serveExample {
			seedExamplePlan(store, logger)
		}

		address := cfg.Address
		if cmd.Flags().Changed("address") {
			address = serveAddress
		}
		srv := server.NewServer(store, logger, server.Config{Address: address})

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		fmt.Fprintf(cmd.ErrOrStderr(), "strata server listening on %s\n", address)

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

// seedExamplePlan populates a demonstration plan so the viewer has something
// to show on first run.
func seedExamplePlan(store *plan.Store, logger *log.Logger) {
	id, err := store.CreatePlan("Build a REST API for the inventory service", "Example plan seeded by --example")
	if err != nil {
		logger.Warn("seed example plan", "error", err)
		return
	}
	design, _ := store.AddTask(id, plan.Path{}, "Design the service architecture", plan.LevelPlanning, "")
	_, _ = store.AddTask(id, design, "Define resource boundaries", plan.LevelIsolation, "")
	schema, _ := store.AddTask(id, design, "Design the storage schema", plan.LevelIsolation, "")
	_, _ = store.AddTask(id, schema, "Write the initial migration", plan.LevelImplementation, "")
	_, _ = store.AddTask(id, plan.Path{}, "Sequence the rollout", plan.LevelOrdering, "")
	_ = store.MoveTo(id, design)
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "listen address (default "+
		"127.0.0.1:3000, or the config file's address)")
	serveCmd.Flags().BoolVar(&serveExample, "example", false, "seed an example plan")
	rootCmd.AddCommand(serveCmd)
}
