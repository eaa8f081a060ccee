// Calliope is an HTTP gateway for the Google Generative Language API.
//
// It exposes simple text and speech generation endpoints and forwards them
// upstream, providing:
//   - API key custody: clients never see the upstream credential
//   - Request validation and size limits
//   - Verbatim pass-through of upstream responses
//   - Structured logging, Prometheus metrics, and OpenTelemetry tracing
//   - Scheduled upstream reachability probing for readiness
//
// Usage:
//
//	# Start the gateway with default configuration
//	calliope run
//
//	# Start with a custom configuration file
//	calliope run --config /path/to/config.yaml
//
//	# Check a configuration file without starting
//	calliope validate --config /path/to/config.yaml
//
//	# Load test a running gateway
//	calliope bench --target http://localhost:8080 --duration 30s --rate 50
//
//	# Show version information
//	calliope version
//
// For complete documentation, see: https://github.com/calliope-hq/calliope
package main

func main() {
	Execute()
}
