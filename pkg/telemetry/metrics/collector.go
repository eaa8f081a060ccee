package metrics

import (
	"strconv"
	"time"

	"calliope-hq/calliope/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the prefix shared by every metric family.
const Namespace = "calliope"

// Collector owns the Prometheus registry and every metric family the
// gateway exports. It satisfies the recorder interfaces consumed by the
// request middleware, the upstream client, and the reachability probe, so
// those packages depend on narrow interfaces instead of on Prometheus.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	gateway  *GatewayMetrics
	upstream *UpstreamMetrics
	probe    *ProbeMetrics
}

// NewCollector creates a collector with every family registered. If registry
// is nil a private registry is created, which keeps the exposition free of
// the default registry's Go runtime collectors.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	return &Collector{
		config:   cfg,
		registry: registry,
		gateway:  NewGatewayMetrics(registry),
		upstream: NewUpstreamMetrics(registry),
		probe:    NewProbeMetrics(registry),
	}
}

// RecordRequest records one completed gateway request. It satisfies the
// request middleware's recorder interface.
func (c *Collector) RecordRequest(handler string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.gateway.RecordRequest(handler, strconv.Itoa(status), duration)
}

// RecordUpstreamRequest records one completed upstream call. status is the
// numeric HTTP status, or "timeout" / "transport_error" when no response
// arrived. It satisfies the upstream client's recorder interface.
func (c *Collector) RecordUpstreamRequest(model, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.upstream.RecordRequest(model, status, duration)
}

// RecordUpstreamTimeout records an upstream call cancelled by the deadline.
func (c *Collector) RecordUpstreamTimeout(model string) {
	if !c.config.Enabled {
		return
	}
	c.upstream.RecordTimeout(model)
}

// RecordProbe records one reachability probe outcome. It satisfies the
// prober's recorder interface.
func (c *Collector) RecordProbe(success bool, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.probe.Record(success, duration)
}

// Registry returns the Prometheus registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
