package middleware

import (
	"net/http"
	"time"
)

// RequestRecorder records per-request measurements. The telemetry package
// provides the Prometheus-backed implementation; tests supply fakes.
type RequestRecorder interface {
	// RecordRequest records one completed request for the named handler.
	RecordRequest(handler string, status int, duration time.Duration)
}

// Metrics records request counts and latencies for one named handler.
// It is applied per route so the handler label is known statically rather
// than derived from the request path.
//
// Example usage:
//
//	mux.Handle("/v1/generate/text", middleware.Metrics(recorder, "text")(textHandler))
func Metrics(recorder RequestRecorder, handlerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			recorder.RecordRequest(handlerName, rw.statusCode, time.Since(startTime))
		})
	}
}
