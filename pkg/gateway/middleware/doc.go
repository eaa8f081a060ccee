// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements middleware functions that handle common
// functionality across all HTTP requests including request ID generation,
// logging, CORS, panic recovery, and per-handler metrics.
//
// # Middleware Chain
//
// Middleware functions are chained in a specific order:
//
//	handler = Recovery(RequestID(Logging(CORS(handler))))
//
// Order (innermost to outermost):
//  1. Metrics: Record request count and latency per handler (applied per route)
//  2. CORS: Add Cross-Origin Resource Sharing headers
//  3. Logging: Log request/response details
//  4. RequestID: Generate and propagate request ID
//  5. Recovery: Recover from panics
//
// RequestID wraps Logging so every log line carries the request ID. Recovery
// is outermost so a panic anywhere in the chain still yields a well-formed
// 500 envelope instead of a dropped connection.
//
// # Request ID
//
// RequestID generates a unique ID for each request using UUID v4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// A client-supplied X-Request-ID is honored, so callers can correlate
// gateway logs with their own.
//
// # Logging
//
// Logging uses structured logging (log/slog) to record request details:
//
//	{
//	  "time": "2026-08-25T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "POST",
//	  "path": "/v1/generate/text",
//	  "status": 200,
//	  "latency_ms": 850,
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000"
//	}
//
// # Recovery
//
// Recovery catches panics in handlers and converts them to HTTP 500 errors
// in the standard envelope:
//
//	{
//	  "error": {
//	    "message": "An unexpected error occurred: <fault>"
//	  }
//	}
//
// The stack trace is logged but never sent to clients.
//
// # Metrics
//
// Metrics is applied per route with a static handler name, so the metric
// labels never depend on unbounded request paths:
//
//	mux.Handle("/v1/generate/text", Metrics(recorder, "text")(textHandler))
//
// # Thread Safety
//
// All middleware functions are thread-safe and can be called concurrently
// from multiple goroutines.
package middleware
