// Package logging provides structured logging for the gateway.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON and text formats
//   - Configurable log levels (debug, info, warn, error)
//   - Child loggers with bound fields via With
//
// The gateway installs the configured logger as the slog default, so
// handlers, middleware, and the upstream client log through slog directly
// and pick up the configured level and format.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Slog())
//
//	// Log structured data
//	logger.Info("request processed",
//	    "request_id", "req-123",
//	    "duration_ms", 1234,
//	)
package logging
