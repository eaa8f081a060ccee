// Package tracing provides distributed tracing for the gateway using
// OpenTelemetry.
//
// # Overview
//
// The tracing package wraps the OpenTelemetry SDK to provide:
//   - OTLP gRPC span export to a configurable collector endpoint
//   - Trace-ID ratio sampling with parent-based consistency
//   - W3C Trace Context propagation for incoming and outgoing requests
//   - A per-route HTTP middleware that opens one server span per request
//
// When tracing is disabled in the configuration, New returns a noop
// tracer and the middleware passes requests through untouched, so the
// request path carries no tracing overhead.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	mux.Handle("/v1/generate/text",
//	    tracing.Middleware(tracer, "text")(textHandler))
//
// Outgoing upstream requests join the active trace through Inject, which
// serializes the span context into the traceparent header.
package tracing
