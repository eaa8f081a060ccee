package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with defaults suitable for
// testing. The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	return &ConfigBuilder{cfg: *DefaultConfig()}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithBaseURL sets the upstream base URL.
func (b *ConfigBuilder) WithBaseURL(url string) *ConfigBuilder {
	b.cfg.Upstream.BaseURL = url
	return b
}

// WithAPIKey sets the upstream API key literal.
func (b *ConfigBuilder) WithAPIKey(key string) *ConfigBuilder {
	b.cfg.Upstream.APIKey = key
	return b
}

// WithUpstreamTimeout sets the upstream call timeout.
func (b *ConfigBuilder) WithUpstreamTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Upstream.Timeout = d
	return b
}

// WithPromptLimit sets the maximum prompt length.
func (b *ConfigBuilder) WithPromptLimit(n int) *ConfigBuilder {
	b.cfg.Limits.MaxPromptLength = n
	return b
}

// WithSpeechTextLimit sets the maximum speech text length.
func (b *ConfigBuilder) WithSpeechTextLimit(n int) *ConfigBuilder {
	b.cfg.Limits.MaxSpeechTextLength = n
	return b
}

// WithProbe enables the probe with the given schedule.
func (b *ConfigBuilder) WithProbe(schedule string) *ConfigBuilder {
	b.cfg.Upstream.Probe.Enabled = true
	b.cfg.Upstream.Probe.Schedule = schedule
	return b
}
