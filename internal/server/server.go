// Package server exposes the plan store over HTTP: a JSON API mirroring every
// store operation, a per-plan server-sent event stream fed by the change
// notifier, health probes, and a minimal live-updating HTML viewer.
package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/strata/internal/log"
	"github.com/felixgeelhaar/strata/internal/plan"
)

// Server wraps an http.Server with graceful shutdown and connection draining.
type Server struct {
	httpServer      *http.Server
	store           *plan.Store
	logger          *log.Logger
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., "127.0.0.1:3000").
	Address string

	// ShutdownTimeout is the maximum time to wait for connections to drain
	// during shutdown. Defaults to 30 seconds.
	ShutdownTimeout time.Duration

	// ReadTimeout is the maximum duration for reading the entire request.
	// Defaults to 10 seconds.
	ReadTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request.
	// Defaults to 60 seconds.
	IdleTimeout time.Duration
}

// NewServer creates an HTTP server over the given store.
func NewServer(store *plan.Store, logger *log.Logger, cfg Config) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = log.DefaultLogger()
	}

	s := &Server{
		store:           store,
		logger:          logger.With("component", "server"),
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	s.httpServer = &http.Server{
		Addr:        cfg.Address,
		Handler:     s.Handler(),
		ReadTimeout: cfg.ReadTimeout,
		IdleTimeout: cfg.IdleTimeout,
		// No WriteTimeout: the SSE stream is a deliberately long-lived
		// response. Per-handler deadlines cover the JSON API.
	}
	return s
}

// Handler builds the full route table. Exposed separately for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/plans", s.handleCreatePlan)
	mux.HandleFunc("GET /api/plans", s.handleListPlans)
	mux.HandleFunc("GET /api/plans/{id}", s.handleGetPlan)
	mux.HandleFunc("DELETE /api/plans/{id}", s.handleDeletePlan)

	mux.HandleFunc("POST /api/plans/{id}/tasks", s.handleAddTask)
	mux.HandleFunc("POST /api/plans/{id}/tasks/complete", s.handleCompleteTask)
	mux.HandleFunc("POST /api/plans/{id}/tasks/uncomplete", s.handleUncompleteTask)
	mux.HandleFunc("POST /api/plans/{id}/tasks/remove", s.handleRemoveTask)
	mux.HandleFunc("POST /api/plans/{id}/tasks/level", s.handleChangeLevel)
	mux.HandleFunc("GET /api/plans/{id}/tasks/notes", s.handleGetNotes)
	mux.HandleFunc("PUT /api/plans/{id}/tasks/notes", s.handleSetNotes)
	mux.HandleFunc("DELETE /api/plans/{id}/tasks/notes", s.handleDeleteNotes)

	mux.HandleFunc("POST /api/plans/{id}/move", s.handleMove)
	mux.HandleFunc("GET /api/plans/{id}/current", s.handleGetCurrent)
	mux.HandleFunc("GET /api/plans/{id}/context", s.handleDistilledContext)
	mux.HandleFunc("POST /api/plans/{id}/lease", s.handleGenerateLease)
	mux.HandleFunc("GET /api/plans/{id}/events", s.handleEvents)

	mux.HandleFunc("GET /api/guide", s.handleGuide)

	mux.HandleFunc("GET /health/live", s.handleLiveness)
	mux.HandleFunc("GET /health/ready", s.handleReadiness)

	mux.HandleFunc("GET /ui", s.handleUI)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui", http.StatusFound)
	})

	return s.withRequestLog(mux)
}

// Start runs the server. It blocks until the server stops and returns
// http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("server listening", "address", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains connections and stops the server. The store is closed
// first so in-flight mutations fail fast rather than racing teardown.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.store.Close()
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.logger.Info("server stopped")
	return err
}

// IsShuttingDown reports whether shutdown has begun.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
