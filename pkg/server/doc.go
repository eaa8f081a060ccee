// Package server provides the HTTP gateway server for generation traffic.
//
// This package ties together the gateway components (handlers, middleware,
// telemetry) and provides server lifecycle management including start,
// graceful shutdown, and OS signal handling.
//
// # Architecture
//
// The server package is the top-level orchestrator that:
//   - Sets up HTTP routes and handlers from the configuration
//   - Chains middleware for cross-cutting concerns
//   - Instruments the generation routes with metrics and tracing
//   - Manages graceful shutdown
//   - Handles OS signals (SIGTERM, SIGINT)
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "calliope-hq/calliope/pkg/config"
//	    "calliope-hq/calliope/pkg/server"
//	    "calliope-hq/calliope/pkg/upstream"
//	)
//
//	// Load configuration
//	cfg := config.GetConfig()
//
//	// Create the upstream client
//	client, err := upstream.NewClient(upstream.ClientConfig{
//	    BaseURL: cfg.Upstream.BaseURL,
//	    Timeout: cfg.Upstream.Timeout,
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Create and start server
//	srv := server.NewServer(cfg, server.Dependencies{
//	    Generator: client,
//	    Keys:      keySource,
//	})
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server shuts down gracefully when receiving SIGTERM or SIGINT, when
// the Start context is cancelled, or when Stop is called:
//
//  1. Stops accepting new connections
//  2. Waits for active requests to complete (up to shutdown timeout)
//  3. Forces connection closure if the timeout is exceeded
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - POST /v1/generate/text - Text generation, proxied upstream
//   - POST /v1/generate/speech - Speech synthesis, proxied upstream
//   - GET /health - Liveness probe (always returns 200)
//   - GET /ready - Readiness probe (follows the upstream reachability probe)
//   - GET /metrics - Prometheus exposition (when metrics are enabled)
//
// # Middleware Chain
//
// Requests pass through the following middleware (outermost to innermost):
//  1. Recovery: Recovers from panics and returns a 500 error envelope
//  2. RequestID: Assigns the unique request ID
//  3. Logging: Logs request/response details
//  4. CORS: Adds Cross-Origin Resource Sharing headers
//
// The generation routes additionally carry per-route tracing and metrics
// middleware, so the handler label on measurements is a fixed route name.
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently from
// multiple goroutines.
package server
