package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProbeMetrics tracks the upstream reachability probe.
//
// Metrics:
//   - calliope_probe_up: last probe outcome (1=reachable, 0=unreachable)
//   - calliope_probe_last_success_timestamp_seconds: unix time of the last
//     successful probe
//   - calliope_probe_duration_seconds: probe call duration
type ProbeMetrics struct {
	up          prometheus.Gauge
	lastSuccess prometheus.Gauge
	duration    prometheus.Histogram
}

// NewProbeMetrics creates and registers the probe metrics.
func NewProbeMetrics(registry *prometheus.Registry) *ProbeMetrics {
	pm := &ProbeMetrics{
		up: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "probe",
				Name:      "up",
				Help:      "Whether the last upstream reachability probe succeeded (1=yes, 0=no)",
			},
		),

		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "probe",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix timestamp of the last successful reachability probe",
			},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "probe",
				Name:      "duration_seconds",
				Help:      "Duration of reachability probe calls in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
		),
	}

	registry.MustRegister(
		pm.up,
		pm.lastSuccess,
		pm.duration,
	)

	return pm
}

// Record records one probe outcome.
func (pm *ProbeMetrics) Record(success bool, duration time.Duration) {
	if success {
		pm.up.Set(1)
		pm.lastSuccess.SetToCurrentTime()
	} else {
		pm.up.Set(0)
	}
	pm.duration.Observe(duration.Seconds())
}
