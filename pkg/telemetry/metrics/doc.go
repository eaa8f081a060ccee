// Package metrics provides Prometheus metrics for the Calliope gateway.
//
// # Overview
//
// The Collector owns a private Prometheus registry and three metric groups:
// gateway request metrics (fed by the per-route request middleware),
// upstream client metrics (fed by the Generative Language API client), and
// reachability probe metrics (fed by the scheduled prober). It exposes them
// through a promhttp handler mounted on the server's metrics path.
//
// # Metric Families
//
//	calliope_gateway_requests_total{handler,status}
//	calliope_gateway_request_duration_seconds{handler}
//	calliope_upstream_requests_total{model,status}
//	calliope_upstream_request_duration_seconds{model}
//	calliope_upstream_timeouts_total{model}
//	calliope_probe_up
//	calliope_probe_last_success_timestamp_seconds
//	calliope_probe_duration_seconds
//
// The handler label is the route's fixed name ("text", "speech"), never the
// raw URL path, so cardinality stays bounded. The upstream status label is
// the upstream HTTP status or one of "timeout" / "transport_error".
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	client, err := upstream.NewClient(clientCfg, collector)
//	mux.Handle("/metrics", collector.Handler())
//
// With metrics disabled in the configuration, the record methods are no-ops
// and the server does not mount the endpoint.
package metrics
