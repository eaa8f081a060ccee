package tracing

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// spanWriter wraps http.ResponseWriter to capture the status code for
// span annotation.
type spanWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (sw *spanWriter) WriteHeader(code int) {
	if !sw.written {
		sw.status = code
		sw.written = true
		sw.ResponseWriter.WriteHeader(code)
	}
}

func (sw *spanWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.WriteHeader(http.StatusOK)
	}
	return sw.ResponseWriter.Write(b)
}

// Middleware wraps an HTTP handler in a server span for one named route.
// Incoming W3C trace context is honored, so gateway spans join traces
// started by callers. Like the metrics middleware, it is applied per route
// so span names stay bounded regardless of the request path.
//
// The span is named "gateway.<route>" and carries the request method,
// path, status code, and latency. Responses with 5xx statuses mark the
// span as failed. The trace ID is echoed in the X-Trace-ID response header
// for correlation.
//
// Example usage:
//
//	mux.Handle("/v1/generate/text", tracing.Middleware(tracer, "text")(textHandler))
func Middleware(tracer *Tracer, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if tracer == nil || !tracer.Enabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := Extract(r.Context(), r.Header)
			ctx, span := tracer.Start(ctx, "gateway."+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", r.URL.Path),
				),
			)
			defer span.End()

			if sc := span.SpanContext(); sc.IsValid() {
				w.Header().Set("X-Trace-ID", sc.TraceID().String())
			}
			// The request ID middleware runs earlier in the chain and has
			// already published the ID on the response headers.
			SetRequestAttributes(span, w.Header().Get("X-Request-ID"), route)

			sw := &spanWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(sw, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", sw.status))
			SetDurationAttribute(span, time.Since(start).Milliseconds())

			if sw.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", sw.status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}
