package config

import (
	"os"
	"path/filepath"
	"testing"
)

// BenchmarkLoadConfig benchmarks loading a typical configuration file.
// Target: <10ms p99 latency
func BenchmarkLoadConfig(b *testing.B) {
	tmpDir := b.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  listen_address: ":8080"
  read_timeout: "30s"
  write_timeout: "60s"
  idle_timeout: "120s"

upstream:
  base_url: "https://generativelanguage.googleapis.com"
  timeout: "30s"
  text_model: "gemini-2.0-flash"
  speech_model: "gemini-2.5-flash-preview-tts"
  voice: "Kore"
  probe:
    enabled: true
    schedule: "@every 1m"

limits:
  max_prompt_length: 5000
  max_system_instruction_length: 5000
  max_speech_text_length: 3000

telemetry:
  logging:
    level: "info"
    format: "json"
  metrics:
    enabled: true
    path: "/metrics"
  tracing:
    enabled: false
    sample_ratio: 1.0
`

	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		b.Fatalf("failed to write config file: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadConfig(configPath); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}

// BenchmarkValidate benchmarks validation of a fully populated configuration.
func BenchmarkValidate(b *testing.B) {
	cfg := DefaultConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Validate(cfg); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}

// BenchmarkApplyDefaults benchmarks default application on a zero config.
func BenchmarkApplyDefaults(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var cfg Config
		ApplyDefaults(&cfg)
	}
}
