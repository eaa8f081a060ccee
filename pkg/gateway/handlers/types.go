package handlers

import (
	"context"
	"encoding/json"

	"calliope-hq/calliope/pkg/upstream"
	"calliope-hq/calliope/pkg/upstream/probe"
)

// Generator issues generation calls against the upstream API.
type Generator interface {
	GenerateContent(ctx context.Context, model, apiKey string, req *upstream.GenerateContentRequest) (json.RawMessage, error)
}

// KeySource resolves the upstream API key at request time. Resolving per
// request means rotated keys take effect without a restart.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// ReadinessProbe reports upstream reachability as observed by the
// background probe.
type ReadinessProbe interface {
	Healthy() bool
	Status() probe.Status
}
