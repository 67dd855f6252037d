// Package server provides the thin HTTP surface over the scoping pipeline:
// one job per inbound request, fully processed within the request lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelez/scoping-agent/internal/config"
	"github.com/avelez/scoping-agent/internal/pipeline"
)

// Server hosts the scoping API.
type Server struct {
	httpServer   *http.Server
	orchestrator *pipeline.Orchestrator
	cfg          *config.Config
	logger       *slog.Logger
}

// New creates a server bound to the given port.
func New(port int, orch *pipeline.Orchestrator, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{orchestrator: orch, cfg: cfg, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /scoping/run", s.handleRun)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.JobTimeout + 30*time.Second, // jobs run within the request
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening and blocks until an interrupt, then shuts down
// gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	s.logger.Info("server.shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server.stopped")
	return nil
}

// withLogging logs one line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("http.request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
