// Package telemetry provides observability for the Calliope gateway.
//
// # Overview
//
// The telemetry package implements structured logging, Prometheus metrics,
// and OpenTelemetry distributed tracing. It provides visibility into
// runtime behavior while keeping overhead on the request path low.
//
// # Components
//
//   - logging: Structured logging built on log/slog
//   - metrics: Prometheus metrics collection and exposition
//   - tracing: OpenTelemetry distributed tracing with OTLP export
//
// # Usage
//
//	// Logging: build from config and install as the slog default
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	slog.SetDefault(logger.Slog())
//
//	// Metrics: one collector shared by middleware, upstream client, probe
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRequest("text", 200, latency)
//
//	// Tracing: spans per route, propagated to the upstream API
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(context.Background())
//
// Each component is independently configurable under the telemetry section
// of the gateway configuration; disabling one never affects the others.
package telemetry
