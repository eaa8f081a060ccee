package config

import "time"

// Config is the root configuration structure for Calliope.
// It contains all configuration sections for the HTTP server, the upstream
// Generative Language API, request limits, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// Upstream contains configuration for the Generative Language API:
	// base URL, credential sources, models, and the reachability probe.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Limits contains the request validation bounds.
	Limits LimitsConfig `yaml:"limits"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., ":8080", "127.0.0.1:8080").
	// Default: ":8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed the upstream timeout or slow upstream calls
	// are cut off before their 504 can be written.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Requests still in flight after this timeout are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing request headers. It does not limit the request body.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Use ["*"] to allow all origins (not recommended for production).
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of response headers browsers may read.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request caching.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`
}

// UpstreamConfig contains configuration for the Generative Language API.
type UpstreamConfig struct {
	// BaseURL is the base URL of the upstream API.
	// Default: "https://generativelanguage.googleapis.com"
	BaseURL string `yaml:"base_url"`

	// APIKey is the upstream API key as a configuration literal.
	// Prefer the GEMINI_API_KEY environment variable or APIKeyFile;
	// keys in configuration files tend to end up in version control.
	APIKey string `yaml:"api_key"`

	// APIKeyFile is the path to a file containing the API key, typically a
	// Kubernetes-style secret mount. The file must have 0600 or 0400
	// permissions.
	APIKeyFile string `yaml:"api_key_file"`

	// WatchKeyFile enables change detection on APIKeyFile so rotated keys
	// take effect without a restart.
	// Default: false
	WatchKeyFile bool `yaml:"watch_key_file"`

	// Timeout is the maximum duration for one upstream call. On expiry the
	// gateway answers 504.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// TextModel is the model used for text generation.
	// Default: "gemini-2.0-flash"
	TextModel string `yaml:"text_model"`

	// SpeechModel is the model used for speech synthesis.
	// Default: "gemini-2.5-flash-preview-tts"
	SpeechModel string `yaml:"speech_model"`

	// Voice is the prebuilt voice name for speech synthesis.
	// Default: "Kore"
	Voice string `yaml:"voice"`

	// MaxIdleConns is the connection pool size across all hosts.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the connection pool size per host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long idle connections are kept open.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	// Probe contains the reachability probe configuration.
	Probe ProbeConfig `yaml:"probe"`
}

// ProbeConfig configures the scheduled upstream reachability probe.
type ProbeConfig struct {
	// Enabled controls whether the probe runs. When disabled the readiness
	// endpoint reports ready without checking the upstream.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression (five fields or a descriptor such as
	// "@every 1m") controlling probe frequency.
	// Default: "@every 1m"
	Schedule string `yaml:"schedule"`

	// Timeout bounds a single probe call.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`
}

// LimitsConfig contains the request validation bounds.
type LimitsConfig struct {
	// MaxPromptLength is the maximum character length of the text prompt.
	// Default: 5000
	MaxPromptLength int `yaml:"max_prompt_length"`

	// MaxSystemInstructionLength is the maximum character length of the
	// optional system instruction.
	// Default: 5000
	MaxSystemInstructionLength int `yaml:"max_system_instruction_length"`

	// MaxSpeechTextLength is the maximum character length of the speech text.
	// Default: 3000
	MaxSpeechTextLength int `yaml:"max_speech_text_length"`

	// MaxRequestBodyBytes caps the size of an accepted request body.
	// Oversized bodies are rejected as client errors.
	// Default: 1048576 (1MB)
	MaxRequestBodyBytes int64 `yaml:"max_request_body_bytes"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is registered.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether traces are exported. When disabled a no-op
	// tracer is installed.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint (e.g., "localhost:4317").
	// Required when tracing is enabled.
	Endpoint string `yaml:"endpoint"`

	// SampleRatio is the fraction of requests to trace, between 0 and 1.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS on the exporter connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// ServiceName is the service.name resource attribute on exported spans.
	// Default: "calliope"
	ServiceName string `yaml:"service_name"`
}
