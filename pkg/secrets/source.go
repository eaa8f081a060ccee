// Package secrets resolves the upstream API key from pluggable sources.
package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// EnvVar is the environment variable consulted for the upstream API key.
const EnvVar = "GEMINI_API_KEY"

// Source resolves the upstream API key.
//
// Implementations include configuration literals, environment variables,
// and key files watched for rotation. Sources can be chained together
// with priority-based fallback.
type Source interface {
	// APIKey returns the key. It returns an error when the source cannot
	// provide one; callers treat that as a configuration fault, not a
	// client fault.
	APIKey(ctx context.Context) (string, error)

	// Name returns the source name (static, env, file, chain).
	Name() string
}

// Refreshable is implemented by sources that can reload the key without a
// restart, such as file sources that watch for rotation.
type Refreshable interface {
	Source

	// Refresh discards any cached key so the next read hits the backend.
	Refresh(ctx context.Context) error
}

// NotConfiguredError reports that no source could provide a key. Its
// message names the environment variable so an operator reading the error
// knows what to set.
type NotConfiguredError struct {
	// Tried lists the names of the sources that were consulted.
	Tried []string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("API key not configured: set the %s environment variable or the upstream api_key setting (tried sources: %s)",
		EnvVar, strings.Join(e.Tried, ", "))
}

// Chain queries sources in order and returns the first key found.
//
// Sources that fail are skipped, so a missing key file does not mask a key
// available from the environment. When every source fails the chain returns
// a NotConfiguredError.
type Chain struct {
	sources []Source
	logger  *slog.Logger
}

// NewChain creates a chain over the given sources, queried in order.
func NewChain(sources ...Source) *Chain {
	return &Chain{
		sources: sources,
		logger:  slog.Default().With("component", "secrets"),
	}
}

// APIKey returns the key from the first source that has one.
func (c *Chain) APIKey(ctx context.Context) (string, error) {
	tried := make([]string, 0, len(c.sources))
	for _, source := range c.sources {
		key, err := source.APIKey(ctx)
		if err == nil && key != "" {
			return key, nil
		}
		if err != nil {
			c.logger.Debug("key source could not provide a key",
				"source", source.Name(),
				"error", err,
			)
		}
		tried = append(tried, source.Name())
	}
	return "", &NotConfiguredError{Tried: tried}
}

// Name returns the source name.
func (c *Chain) Name() string {
	return "chain"
}

// Refresh propagates to every refreshable source in the chain.
func (c *Chain) Refresh(ctx context.Context) error {
	for _, source := range c.sources {
		refreshable, ok := source.(Refreshable)
		if !ok {
			continue
		}
		if err := refreshable.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to refresh %s source: %w", source.Name(), err)
		}
	}
	return nil
}
