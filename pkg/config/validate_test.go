package config

import (
	"errors"
	"strings"
	"testing"
)

// invalidate applies a mutation to a valid default config.
func invalidate(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		wantField string
	}{
		{
			name:      "missing listen address",
			cfg:       invalidate(func(c *Config) { c.Server.ListenAddress = "" }),
			wantField: "server.listen_address",
		},
		{
			name:      "negative read timeout",
			cfg:       invalidate(func(c *Config) { c.Server.ReadTimeout = -1 }),
			wantField: "server.read_timeout",
		},
		{
			name:      "excessive header bytes",
			cfg:       invalidate(func(c *Config) { c.Server.MaxHeaderBytes = 100 * 1024 * 1024 }),
			wantField: "server.max_header_bytes",
		},
		{
			name: "cors enabled without origins",
			cfg: invalidate(func(c *Config) {
				c.Server.CORS.Enabled = true
				c.Server.CORS.AllowedOrigins = nil
			}),
			wantField: "server.cors.allowed_origins",
		},
		{
			name:      "missing base url",
			cfg:       invalidate(func(c *Config) { c.Upstream.BaseURL = "" }),
			wantField: "upstream.base_url",
		},
		{
			name:      "unsupported base url scheme",
			cfg:       invalidate(func(c *Config) { c.Upstream.BaseURL = "ftp://example.test" }),
			wantField: "upstream.base_url",
		},
		{
			name:      "zero upstream timeout",
			cfg:       invalidate(func(c *Config) { c.Upstream.Timeout = 0 }),
			wantField: "upstream.timeout",
		},
		{
			name:      "missing text model",
			cfg:       invalidate(func(c *Config) { c.Upstream.TextModel = "" }),
			wantField: "upstream.text_model",
		},
		{
			name:      "missing speech model",
			cfg:       invalidate(func(c *Config) { c.Upstream.SpeechModel = "" }),
			wantField: "upstream.speech_model",
		},
		{
			name:      "missing voice",
			cfg:       invalidate(func(c *Config) { c.Upstream.Voice = "" }),
			wantField: "upstream.voice",
		},
		{
			name: "probe enabled without schedule",
			cfg: invalidate(func(c *Config) {
				c.Upstream.Probe.Enabled = true
				c.Upstream.Probe.Schedule = ""
			}),
			wantField: "upstream.probe.schedule",
		},
		{
			name:      "zero prompt limit",
			cfg:       invalidate(func(c *Config) { c.Limits.MaxPromptLength = 0 }),
			wantField: "limits.max_prompt_length",
		},
		{
			name:      "negative speech text limit",
			cfg:       invalidate(func(c *Config) { c.Limits.MaxSpeechTextLength = -5 }),
			wantField: "limits.max_speech_text_length",
		},
		{
			name:      "zero body cap",
			cfg:       invalidate(func(c *Config) { c.Limits.MaxRequestBodyBytes = 0 }),
			wantField: "limits.max_request_body_bytes",
		},
		{
			name:      "invalid log level",
			cfg:       invalidate(func(c *Config) { c.Telemetry.Logging.Level = "verbose" }),
			wantField: "telemetry.logging.level",
		},
		{
			name:      "invalid log format",
			cfg:       invalidate(func(c *Config) { c.Telemetry.Logging.Format = "xml" }),
			wantField: "telemetry.logging.format",
		},
		{
			name:      "metrics path without slash",
			cfg:       invalidate(func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }),
			wantField: "telemetry.metrics.path",
		},
		{
			name: "tracing enabled without endpoint",
			cfg: invalidate(func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Endpoint = ""
			}),
			wantField: "telemetry.tracing.endpoint",
		},
		{
			name:      "sample ratio out of range",
			cfg:       invalidate(func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }),
			wantField: "telemetry.tracing.sample_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}

			found := false
			for _, fieldErr := range verr.Errors {
				if fieldErr.Field == tt.wantField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got: %v", tt.wantField, err)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := invalidate(func(c *Config) {
		c.Server.ListenAddress = ""
		c.Upstream.BaseURL = ""
		c.Limits.MaxPromptLength = 0
	})

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	if len(verr.Errors) < 3 {
		t.Errorf("expected at least 3 errors, got %d: %v", len(verr.Errors), err)
	}

	// Multi-error messages enumerate every failure
	if !strings.Contains(err.Error(), "errors") {
		t.Errorf("expected aggregated message, got: %v", err)
	}
}

func TestFieldErrorFormat(t *testing.T) {
	err := FieldError{Field: "upstream.timeout", Message: "timeout must be positive"}

	if err.Error() != "upstream.timeout: timeout must be positive" {
		t.Errorf("unexpected format: %q", err.Error())
	}
}
