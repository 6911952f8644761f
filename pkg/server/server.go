package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"stagehand-hq/stagehand/pkg/config"
	"stagehand-hq/stagehand/pkg/livereload"
	"stagehand-hq/stagehand/pkg/proxy/middleware"
	"stagehand-hq/stagehand/pkg/telemetry/health"
	"stagehand-hq/stagehand/pkg/telemetry/metrics"
)

// OpsPrefix is the reserved path prefix for operational endpoints. Site
// paths never start with it, so health, metrics, and reload can never
// shadow content that should fall through to the upstream.
const OpsPrefix = "/__stagehand/"

// BuildInfo identifies the running binary on the version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Server is the stagehand HTTP server.
type Server struct {
	config    *config.Config
	content   http.Handler
	checker   *health.Checker
	collector *metrics.Collector
	hub       *livereload.Hub
	build     BuildInfo

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new server. content handles everything outside the
// operational prefix.
func NewServer(cfg *config.Config, content http.Handler, checker *health.Checker, collector *metrics.Collector, hub *livereload.Hub, build BuildInfo) *Server {
	return &Server{
		config:       cfg,
		content:      content,
		checker:      checker,
		collector:    collector,
		hub:          hub,
		build:        build,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.Server.ListenAddress,
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"address", s.config.Server.ListenAddress,
			"content_root", s.config.Content.Root,
			"origin", s.config.Proxy.Origin,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		// Disconnect reload clients first; their streams never end on
		// their own and would otherwise hold Shutdown open.
		if s.hub != nil {
			s.hub.Close()
		}

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(OpsPrefix+"health", s.checker.LivenessHandler())
	mux.HandleFunc(OpsPrefix+"ready", s.checker.ReadinessHandler())
	mux.HandleFunc(OpsPrefix+"version", health.VersionHandler(s.build.Version, s.build.Commit, s.build.BuildTime))
	mux.Handle(OpsPrefix+"metrics", s.collector.Handler())
	if s.hub != nil {
		mux.HandleFunc(OpsPrefix+"reload", s.hub.Handler())
	}

	// Everything else is site content.
	mux.Handle("/", s.content)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
