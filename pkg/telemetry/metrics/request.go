package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// requestDurationBuckets cover generative requests: a validation rejection
// lands in the low milliseconds, a generation call anywhere up to the 30s
// upstream timeout.
var requestDurationBuckets = []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0}

// GatewayMetrics tracks inbound request processing.
//
// Metrics:
//   - calliope_gateway_requests_total: request count by handler and status
//   - calliope_gateway_request_duration_seconds: request duration by handler
type GatewayMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewGatewayMetrics creates and registers the gateway request metrics.
func NewGatewayMetrics(registry *prometheus.Registry) *GatewayMetrics {
	gm := &GatewayMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Total number of gateway requests by handler and HTTP status",
			},
			[]string{"handler", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Duration of gateway requests in seconds",
				Buckets:   requestDurationBuckets,
			},
			[]string{"handler"},
		),
	}

	registry.MustRegister(
		gm.requestsTotal,
		gm.requestDuration,
	)

	return gm
}

// RecordRequest records one completed request. handler is the route's fixed
// name ("text", "speech", "health", ...), status the HTTP status code as a
// string.
func (gm *GatewayMetrics) RecordRequest(handler, status string, duration time.Duration) {
	gm.requestsTotal.WithLabelValues(handler, status).Inc()
	gm.requestDuration.WithLabelValues(handler).Observe(duration.Seconds())
}
