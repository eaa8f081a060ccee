package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newSampler creates a sampler from the configured sample ratio.
//
// A ratio of 1.0 samples every trace, 0.0 samples none, and anything in
// between uses TraceIDRatioBased sampling so the decision is a function of
// the trace ID and stays consistent across services.
//
// Every sampler is wrapped in ParentBased, which respects the sampling
// decision of a remote parent span when one is present:
//   - If parent span is sampled, the child is sampled
//   - If parent span is not sampled, the child is not sampled
//   - If no parent span, use the configured sampler
func newSampler(ratio float64) (sdktrace.Sampler, error) {
	if ratio < 0.0 || ratio > 1.0 {
		return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
	}

	var base sdktrace.Sampler
	switch {
	case ratio == 0.0:
		base = sdktrace.NeverSample()
	case ratio == 1.0:
		base = sdktrace.AlwaysSample()
	default:
		base = sdktrace.TraceIDRatioBased(ratio)
	}

	return sdktrace.ParentBased(base), nil
}
