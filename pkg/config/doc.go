// Package config provides configuration management for Calliope.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CALLIOPE_SECTION_FIELD.
// For example:
//
//   - CALLIOPE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - CALLIOPE_UPSTREAM_API_KEY overrides upstream.api_key
//   - CALLIOPE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
// The upstream API key additionally falls back to GEMINI_API_KEY through the
// secrets package, which is the recommended way to supply it.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.ListenAddress)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Hot Reload
//
// A Watcher can monitor the configuration file and trigger debounced reloads:
//
//	watcher, err := config.NewWatcher("config.yaml", 0)
//	go watcher.Watch(ctx, func() error {
//	    return config.ReloadConfig("config.yaml")
//	})
//
// A reload that fails validation is logged and discarded; the previous
// configuration stays in effect.
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  listen_address: ":8080"
//
//	upstream:
//	  base_url: "https://generativelanguage.googleapis.com"
//	  text_model: "gemini-2.0-flash"
//	  speech_model: "gemini-2.5-flash-preview-tts"
//
//	limits:
//	  max_prompt_length: 5000
//	  max_speech_text_length: 3000
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses
// read-write locks to allow concurrent reads while protecting against
// concurrent writes during reload operations.
package config
