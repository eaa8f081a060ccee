package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks calls to the Generative Language API.
//
// Metrics:
//   - calliope_upstream_requests_total: call count by model and outcome
//   - calliope_upstream_request_duration_seconds: call duration by model
//   - calliope_upstream_timeouts_total: calls cancelled by the deadline
//
// The status label carries the upstream HTTP status, or "timeout" /
// "transport_error" when no response arrived.
type UpstreamMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	timeoutsTotal   *prometheus.CounterVec
}

// NewUpstreamMetrics creates and registers the upstream client metrics.
func NewUpstreamMetrics(registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Total number of upstream API calls by model and outcome",
			},
			[]string{"model", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Duration of upstream API calls in seconds",
				Buckets:   requestDurationBuckets,
			},
			[]string{"model"},
		),

		timeoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "upstream",
				Name:      "timeouts_total",
				Help:      "Total number of upstream API calls cancelled by the deadline",
			},
			[]string{"model"},
		),
	}

	registry.MustRegister(
		um.requestsTotal,
		um.requestDuration,
		um.timeoutsTotal,
	)

	return um
}

// RecordRequest records one completed upstream call.
func (um *UpstreamMetrics) RecordRequest(model, status string, duration time.Duration) {
	um.requestsTotal.WithLabelValues(model, status).Inc()
	um.requestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordTimeout records a call that hit the configured deadline.
func (um *UpstreamMetrics) RecordTimeout(model string) {
	um.timeoutsTotal.WithLabelValues(model).Inc()
}
