package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is unmarshaled over DefaultConfig, so omitted fields keep their
// defaults; explicitly zeroed scalars are then normalized by ApplyDefaults.
// The result is validated before it is returned. Environment variables are
// not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CALLIOPE_SECTION_FIELD (e.g., CALLIOPE_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file over defaults
// 2. Apply environment variable overrides
// 3. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format CALLIOPE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("CALLIOPE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("CALLIOPE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("CALLIOPE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("CALLIOPE_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("CALLIOPE_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("CALLIOPE_SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}
	if val := os.Getenv("CALLIOPE_SERVER_CORS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.CORS.Enabled = b
		}
	}

	// Upstream overrides
	if val := os.Getenv("CALLIOPE_UPSTREAM_BASE_URL"); val != "" {
		cfg.Upstream.BaseURL = val
	}
	if val := os.Getenv("CALLIOPE_UPSTREAM_API_KEY"); val != "" {
		cfg.Upstream.APIKey = val
	}
	if val := os.Getenv("CALLIOPE_UPSTREAM_API_KEY_FILE"); val != "" {
		cfg.Upstream.APIKeyFile = val
	}
	if val := os.Getenv("CALLIOPE_UPSTREAM_WATCH_KEY_FILE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Upstream.WatchKeyFile = b
		}
	}
	if val := os.Getenv("CALLIOPE_UPSTREAM_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Upstream.Timeout = d
		}
	}
	if val := os.Getenv("CALLIOPE_UPSTREAM_TEXT_MODEL"); val != "" {
		cfg.Upstream.TextModel = val
	}
	if val := os.Getenv("CALLIOPE_UPSTREAM_SPEECH_MODEL"); val != "" {
		cfg.Upstream.SpeechModel = val
	}
	if val := os.Getenv("CALLIOPE_UPSTREAM_VOICE"); val != "" {
		cfg.Upstream.Voice = val
	}
	if val := os.Getenv("CALLIOPE_UPSTREAM_PROBE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Upstream.Probe.Enabled = b
		}
	}
	if val := os.Getenv("CALLIOPE_UPSTREAM_PROBE_SCHEDULE"); val != "" {
		cfg.Upstream.Probe.Schedule = val
	}
	if val := os.Getenv("CALLIOPE_UPSTREAM_PROBE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Upstream.Probe.Timeout = d
		}
	}

	// Limits overrides
	if val := os.Getenv("CALLIOPE_LIMITS_MAX_PROMPT_LENGTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Limits.MaxPromptLength = i
		}
	}
	if val := os.Getenv("CALLIOPE_LIMITS_MAX_SYSTEM_INSTRUCTION_LENGTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Limits.MaxSystemInstructionLength = i
		}
	}
	if val := os.Getenv("CALLIOPE_LIMITS_MAX_SPEECH_TEXT_LENGTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Limits.MaxSpeechTextLength = i
		}
	}
	if val := os.Getenv("CALLIOPE_LIMITS_MAX_REQUEST_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Limits.MaxRequestBodyBytes = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("CALLIOPE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CALLIOPE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CALLIOPE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CALLIOPE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("CALLIOPE_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("CALLIOPE_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("CALLIOPE_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
	if val := os.Getenv("CALLIOPE_TELEMETRY_TRACING_INSECURE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Insecure = b
		}
	}
	if val := os.Getenv("CALLIOPE_TELEMETRY_TRACING_SERVICE_NAME"); val != "" {
		cfg.Telemetry.Tracing.ServiceName = val
	}
}
