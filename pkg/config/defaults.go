package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = ":8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Upstream defaults
	DefaultBaseURL             = "https://generativelanguage.googleapis.com"
	DefaultUpstreamTimeout     = 30 * time.Second
	DefaultTextModel           = "gemini-2.0-flash"
	DefaultSpeechModel         = "gemini-2.5-flash-preview-tts"
	DefaultVoice               = "Kore"
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second

	// Probe defaults
	DefaultProbeEnabled  = false
	DefaultProbeSchedule = "@every 1m"
	DefaultProbeTimeout  = 5 * time.Second

	// Limits defaults
	DefaultMaxPromptLength            = 5000
	DefaultMaxSystemInstructionLength = 5000
	DefaultMaxSpeechTextLength        = 3000
	DefaultMaxRequestBodyBytes        = int64(1048576) // 1MB

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultTracingEnabled     = false
	DefaultTracingSampleRatio = 1.0
	DefaultTracingInsecure    = true
	DefaultServiceName        = "calliope"
)

// DefaultConfig returns a fully populated configuration with every field at
// its default value. Loading unmarshals the YAML file over this struct, so
// boolean flags that default to true (CORS, metrics) keep that value unless
// the file sets them explicitly.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   DefaultListenAddress,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxHeaderBytes:  DefaultMaxHeaderBytes,
			CORS: CORSConfig{
				Enabled:        DefaultCORSEnabled,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
				ExposedHeaders: []string{"X-Request-ID"},
				MaxAge:         DefaultCORSMaxAge,
			},
		},
		Upstream: UpstreamConfig{
			BaseURL:             DefaultBaseURL,
			Timeout:             DefaultUpstreamTimeout,
			TextModel:           DefaultTextModel,
			SpeechModel:         DefaultSpeechModel,
			Voice:               DefaultVoice,
			MaxIdleConns:        DefaultMaxIdleConns,
			MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
			IdleConnTimeout:     DefaultIdleConnTimeout,
			Probe: ProbeConfig{
				Enabled:  DefaultProbeEnabled,
				Schedule: DefaultProbeSchedule,
				Timeout:  DefaultProbeTimeout,
			},
		},
		Limits: LimitsConfig{
			MaxPromptLength:            DefaultMaxPromptLength,
			MaxSystemInstructionLength: DefaultMaxSystemInstructionLength,
			MaxSpeechTextLength:        DefaultMaxSpeechTextLength,
			MaxRequestBodyBytes:        DefaultMaxRequestBodyBytes,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLoggingLevel,
				Format: DefaultLoggingFormat,
			},
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
				Path:    DefaultMetricsPath,
			},
			Tracing: TracingConfig{
				Enabled:     DefaultTracingEnabled,
				SampleRatio: DefaultTracingSampleRatio,
				Insecure:    DefaultTracingInsecure,
				ServiceName: DefaultServiceName,
			},
		},
	}
}

// ApplyDefaults applies default values to fields that have zero values.
// This function is idempotent and safe to call multiple times. Boolean
// flags are left alone: their defaults come from DefaultConfig, because a
// zero-value bool cannot be told apart from an explicit false.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// CORS defaults
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.Server.CORS.AllowedMethods) == 0 {
		cfg.Server.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.Server.CORS.AllowedHeaders) == 0 {
		cfg.Server.CORS.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if len(cfg.Server.CORS.ExposedHeaders) == 0 {
		cfg.Server.CORS.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = DefaultCORSMaxAge
	}

	// Upstream defaults
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultBaseURL
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if cfg.Upstream.TextModel == "" {
		cfg.Upstream.TextModel = DefaultTextModel
	}
	if cfg.Upstream.SpeechModel == "" {
		cfg.Upstream.SpeechModel = DefaultSpeechModel
	}
	if cfg.Upstream.Voice == "" {
		cfg.Upstream.Voice = DefaultVoice
	}
	if cfg.Upstream.MaxIdleConns == 0 {
		cfg.Upstream.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.Upstream.MaxIdleConnsPerHost == 0 {
		cfg.Upstream.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if cfg.Upstream.IdleConnTimeout == 0 {
		cfg.Upstream.IdleConnTimeout = DefaultIdleConnTimeout
	}

	// Probe defaults
	if cfg.Upstream.Probe.Schedule == "" {
		cfg.Upstream.Probe.Schedule = DefaultProbeSchedule
	}
	if cfg.Upstream.Probe.Timeout == 0 {
		cfg.Upstream.Probe.Timeout = DefaultProbeTimeout
	}

	// Limits defaults
	if cfg.Limits.MaxPromptLength == 0 {
		cfg.Limits.MaxPromptLength = DefaultMaxPromptLength
	}
	if cfg.Limits.MaxSystemInstructionLength == 0 {
		cfg.Limits.MaxSystemInstructionLength = DefaultMaxSystemInstructionLength
	}
	if cfg.Limits.MaxSpeechTextLength == 0 {
		cfg.Limits.MaxSpeechTextLength = DefaultMaxSpeechTextLength
	}
	if cfg.Limits.MaxRequestBodyBytes == 0 {
		cfg.Limits.MaxRequestBodyBytes = DefaultMaxRequestBodyBytes
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultServiceName
	}
}
