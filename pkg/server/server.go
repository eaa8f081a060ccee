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

	"calliope-hq/calliope/pkg/config"
	"calliope-hq/calliope/pkg/gateway/handlers"
	"calliope-hq/calliope/pkg/gateway/middleware"
	"calliope-hq/calliope/pkg/telemetry/metrics"
	"calliope-hq/calliope/pkg/telemetry/tracing"
)

// Dependencies carries the wired components the server serves with.
type Dependencies struct {
	// Generator issues generation calls against the upstream API.
	Generator handlers.Generator

	// Keys resolves the upstream API key per request.
	Keys handlers.KeySource

	// Collector records request metrics and serves the exposition
	// endpoint. May be nil, which disables both.
	Collector *metrics.Collector

	// Tracer opens server spans per route. May be nil.
	Tracer *tracing.Tracer

	// Probe reports upstream reachability for the readiness endpoint.
	// Must be left nil (not a typed nil) when the probe is disabled.
	Probe handlers.ReadinessProbe
}

// Server is the HTTP gateway server. It owns the listener, the route
// table, and the middleware chain; the lifecycle of the components in
// Dependencies belongs to the caller.
type Server struct {
	config       *config.Config
	deps         Dependencies
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	stopOnce     sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new gateway server.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	return &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown, which is
// triggered by ctx cancellation, SIGINT/SIGTERM, Stop, or a listener
// error.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server",
			"address", s.config.Server.ListenAddress,
			"text_model", s.config.Upstream.TextModel,
			"speech_model", s.config.Upstream.SpeechModel,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a blocked Start to begin graceful shutdown. It is safe to
// call from another goroutine and more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.shutdownChan)
	})
}

// Shutdown gracefully shuts down the server, allowing in-flight requests
// up to the configured shutdown timeout to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	textHandler := handlers.NewTextHandler(s.deps.Generator, s.deps.Keys, handlers.TextConfig{
		Model:                      s.config.Upstream.TextModel,
		MaxPromptLength:            s.config.Limits.MaxPromptLength,
		MaxSystemInstructionLength: s.config.Limits.MaxSystemInstructionLength,
		MaxBodyBytes:               s.config.Limits.MaxRequestBodyBytes,
	})
	speechHandler := handlers.NewSpeechHandler(s.deps.Generator, s.deps.Keys, handlers.SpeechConfig{
		Model:         s.config.Upstream.SpeechModel,
		Voice:         s.config.Upstream.Voice,
		MaxTextLength: s.config.Limits.MaxSpeechTextLength,
		MaxBodyBytes:  s.config.Limits.MaxRequestBodyBytes,
	})

	mux.Handle("/v1/generate/text", s.instrument("text", textHandler))
	mux.Handle("/v1/generate/speech", s.instrument("speech", speechHandler))

	// Health endpoints are not instrumented: probes would drown the
	// request metrics and traces.
	mux.Handle("/health", handlers.NewHealthHandler())
	mux.Handle("/ready", handlers.NewReadyHandler(s.deps.Probe))

	if s.deps.Collector != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.deps.Collector.Handler())
	}

	// Middleware chain, innermost first. Request IDs are assigned before
	// logging so every log line carries one.
	var handler http.Handler = mux
	handler = middleware.CORS(s.convertCORSConfig())(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// instrument wraps a route handler with per-route metrics and tracing.
func (s *Server) instrument(route string, h http.Handler) http.Handler {
	if s.deps.Collector != nil {
		h = middleware.Metrics(s.deps.Collector, route)(h)
	}
	h = tracing.Middleware(s.deps.Tracer, route)(h)
	return h
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler. It is used by tests to
// exercise the full route table without binding a listener.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// convertCORSConfig converts config.CORSConfig to middleware.CORSConfig.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	return &middleware.CORSConfig{
		Enabled:        s.config.Server.CORS.Enabled,
		AllowedOrigins: s.config.Server.CORS.AllowedOrigins,
		AllowedMethods: s.config.Server.CORS.AllowedMethods,
		AllowedHeaders: s.config.Server.CORS.AllowedHeaders,
		ExposedHeaders: s.config.Server.CORS.ExposedHeaders,
		MaxAge:         s.config.Server.CORS.MaxAge,
	}
}
