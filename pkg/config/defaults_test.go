package config

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("expected default configuration to validate, got: %v", err)
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.ListenAddress != ":8080" {
		t.Errorf("expected listen address ':8080', got %q", cfg.Server.ListenAddress)
	}
	if cfg.Upstream.BaseURL != "https://generativelanguage.googleapis.com" {
		t.Errorf("unexpected base URL %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("expected upstream timeout 30s, got %s", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.TextModel != "gemini-2.0-flash" {
		t.Errorf("unexpected text model %q", cfg.Upstream.TextModel)
	}
	if cfg.Upstream.SpeechModel != "gemini-2.5-flash-preview-tts" {
		t.Errorf("unexpected speech model %q", cfg.Upstream.SpeechModel)
	}
	if cfg.Upstream.Voice != "Kore" {
		t.Errorf("unexpected voice %q", cfg.Upstream.Voice)
	}
	if cfg.Upstream.Probe.Enabled {
		t.Error("expected probe to be disabled by default")
	}
	if cfg.Limits.MaxPromptLength != 5000 {
		t.Errorf("expected max prompt length 5000, got %d", cfg.Limits.MaxPromptLength)
	}
	if cfg.Limits.MaxSystemInstructionLength != 5000 {
		t.Errorf("expected max system instruction length 5000, got %d", cfg.Limits.MaxSystemInstructionLength)
	}
	if cfg.Limits.MaxSpeechTextLength != 3000 {
		t.Errorf("expected max speech text length 3000, got %d", cfg.Limits.MaxSpeechTextLength)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics to be enabled by default")
	}
	if cfg.Telemetry.Tracing.Enabled {
		t.Error("expected tracing to be disabled by default")
	}
}

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("expected read timeout %s, got %s", DefaultReadTimeout, cfg.Server.ReadTimeout)
	}
	if cfg.Upstream.BaseURL != DefaultBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultBaseURL, cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Probe.Schedule != DefaultProbeSchedule {
		t.Errorf("expected probe schedule %q, got %q", DefaultProbeSchedule, cfg.Upstream.Probe.Schedule)
	}
	if cfg.Limits.MaxRequestBodyBytes != DefaultMaxRequestBodyBytes {
		t.Errorf("expected max request body bytes %d, got %d", DefaultMaxRequestBodyBytes, cfg.Limits.MaxRequestBodyBytes)
	}
	if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
		t.Errorf("expected logging level %q, got %q", DefaultLoggingLevel, cfg.Telemetry.Logging.Level)
	}
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		t.Error("expected CORS allowed origins to be defaulted")
	}
}

func TestApplyDefaultsIsIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	ApplyDefaults(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		t.Errorf("expected configuration to stay valid, got: %v", err)
	}
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.Server.ListenAddress = "127.0.0.1:9999"
	cfg.Upstream.Timeout = 5 * time.Second
	cfg.Limits.MaxPromptLength = 100

	ApplyDefaults(&cfg)

	if cfg.Server.ListenAddress != "127.0.0.1:9999" {
		t.Errorf("expected explicit listen address preserved, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Upstream.Timeout != 5*time.Second {
		t.Errorf("expected explicit timeout preserved, got %s", cfg.Upstream.Timeout)
	}
	if cfg.Limits.MaxPromptLength != 100 {
		t.Errorf("expected explicit limit preserved, got %d", cfg.Limits.MaxPromptLength)
	}
}
