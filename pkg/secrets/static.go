package secrets

import (
	"context"
	"fmt"
	"strings"
)

// Static returns a key captured at construction, typically the api_key
// literal from the configuration file.
type Static struct {
	key string
}

// NewStatic creates a static source. Surrounding whitespace is trimmed so a
// trailing newline pasted into a config file does not corrupt the key.
func NewStatic(key string) *Static {
	return &Static{key: strings.TrimSpace(key)}
}

// APIKey returns the configured key.
func (s *Static) APIKey(ctx context.Context) (string, error) {
	if s.key == "" {
		return "", fmt.Errorf("no static key configured")
	}
	return s.key, nil
}

// Name returns the source name.
func (s *Static) Name() string {
	return "static"
}
