package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys. HTTP attributes follow OpenTelemetry semantic
// conventions (http.*); gateway-specific keys use the "calliope.*"
// namespace and mirror the label names used by the metrics package.
const (
	// AttrRequestID is the per-request correlation ID.
	AttrRequestID = "calliope.request_id"

	// AttrHandler is the fixed route name ("text", "speech").
	AttrHandler = "calliope.handler"

	// AttrModel is the upstream model name.
	AttrModel = "calliope.model"

	// AttrDuration is the handler latency in milliseconds.
	AttrDuration = "calliope.duration_ms"
)

// SetRequestAttributes sets request identification attributes on a span.
// An empty request ID is omitted.
func SetRequestAttributes(span trace.Span, requestID, handler string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrHandler, handler),
	}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	span.SetAttributes(attrs...)
}

// SetDurationAttribute sets the duration attribute on a span, recorded in
// milliseconds.
//
// Example:
//
//	start := time.Now()
//	// ... do work ...
//	SetDurationAttribute(span, time.Since(start).Milliseconds())
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}
