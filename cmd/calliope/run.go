package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"calliope-hq/calliope/pkg/cli"
	"calliope-hq/calliope/pkg/config"
	"calliope-hq/calliope/pkg/secrets"
	"calliope-hq/calliope/pkg/server"
	"calliope-hq/calliope/pkg/telemetry/logging"
	"calliope-hq/calliope/pkg/telemetry/metrics"
	"calliope-hq/calliope/pkg/telemetry/tracing"
	"calliope-hq/calliope/pkg/upstream"
	"calliope-hq/calliope/pkg/upstream/probe"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watchConfig   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Calliope gateway server",
	Long: `Start the Calliope gateway server with the specified configuration.

The server listens on the configured address and forwards text and speech
generation requests to the Generative Language API, attaching the upstream
API key so clients never need one.

A missing configuration file is only an error when --config was given
explicitly; otherwise the gateway runs on built-in defaults and reads the
API key from the ` + secrets.EnvVar + ` environment variable.

Examples:
  # Start with default config
  calliope run

  # Start with custom config
  calliope run --config /etc/calliope/config.yaml

  # Override listen address
  calliope run --listen 0.0.0.0:8080

  # Validate config without starting server
  calliope run --dry-run

  # Restart automatically when the config file changes
  calliope run --watch-config`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
	runCmd.Flags().BoolVar(&runFlags.watchConfig, "watch-config", false, "restart the server when the config file changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := loadRunConfig(cmd); err != nil {
		return err
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The watcher stops the current server after a successful reload; the
	// run loop below then rebuilds it from the new configuration.
	var (
		currentSrv atomic.Pointer[server.Server]
		reload     atomic.Bool
	)
	if runFlags.watchConfig {
		watcher, err := config.NewWatcher(cfgFile, 0)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to watch config file: %w", err))
		}
		go func() {
			_ = watcher.Watch(ctx, func() error {
				if err := config.ReloadConfig(cfgFile); err != nil {
					return err
				}
				reload.Store(true)
				if s := currentSrv.Load(); s != nil {
					s.Stop()
				}
				return nil
			})
		}()
	}

	for {
		srv, cleanup, err := buildServer(ctx, config.GetConfig())
		if err != nil {
			return err
		}
		currentSrv.Store(srv)

		err = srv.Start(ctx)
		cleanup()
		if err != nil {
			return cli.NewCommandError("run", err)
		}

		if !reload.CompareAndSwap(true, false) {
			fmt.Println("✓ Server stopped")
			return nil
		}
		fmt.Println("✓ Configuration reloaded, restarting server")
	}
}

// loadRunConfig initializes the configuration singleton. When --config was
// not given and the default file does not exist, the built-in defaults are
// used instead.
func loadRunConfig(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			if err := config.InitializeDefaults(); err != nil {
				return cli.NewConfigError("", err.Error())
			}
			return nil
		}
	}
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return nil
}

// buildServer wires the gateway's dependencies from cfg and returns the
// server plus a cleanup function releasing every dependency, to be called
// after the server stops.
func buildServer(ctx context.Context, cfg *config.Config) (*server.Server, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	keys, err := buildKeySource(cfg, &closers)
	if err != nil {
		cleanup()
		return nil, nil, cli.NewConfigError("upstream", err.Error())
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	client, err := upstream.NewClient(upstream.ClientConfig{
		BaseURL:             cfg.Upstream.BaseURL,
		Timeout:             cfg.Upstream.Timeout,
		MaxIdleConns:        cfg.Upstream.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Upstream.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Upstream.IdleConnTimeout,
	}, collector)
	if err != nil {
		cleanup()
		return nil, nil, cli.NewConfigError("upstream", err.Error())
	}
	closers = append(closers, func() { _ = client.Close() })

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		cleanup()
		return nil, nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}
	closers = append(closers, func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	})

	deps := server.Dependencies{
		Generator: client,
		Keys:      keys,
		Collector: collector,
		Tracer:    tracer,
	}

	if cfg.Upstream.Probe.Enabled {
		prober := probe.NewProber(client, keys, &probe.Config{
			Schedule: cfg.Upstream.Probe.Schedule,
			Timeout:  cfg.Upstream.Probe.Timeout,
		}, collector)
		if err := prober.Start(ctx); err != nil {
			cleanup()
			return nil, nil, cli.NewConfigError("upstream.probe", err.Error())
		}
		closers = append(closers, prober.Stop)
		deps.Probe = prober
	}

	return server.NewServer(cfg, deps), cleanup, nil
}

// buildKeySource assembles the API key chain: key file first (a rotatable
// secret mount), then the config literal, then the environment variable.
func buildKeySource(cfg *config.Config, closers *[]func()) (*secrets.Chain, error) {
	var sources []secrets.Source

	if cfg.Upstream.APIKeyFile != "" {
		file, err := secrets.NewFile(cfg.Upstream.APIKeyFile, cfg.Upstream.WatchKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open API key file: %w", err)
		}
		*closers = append(*closers, func() { _ = file.Close() })
		sources = append(sources, file)
	}
	if cfg.Upstream.APIKey != "" {
		sources = append(sources, secrets.NewStatic(cfg.Upstream.APIKey))
	}
	sources = append(sources, secrets.NewEnv(secrets.EnvVar))

	return secrets.NewChain(sources...), nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Calliope v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", configSource())
	fmt.Println("✓ Configuration loaded")

	slog.Debug("upstream configured",
		"base_url", cfg.Upstream.BaseURL,
		"text_model", cfg.Upstream.TextModel,
		"speech_model", cfg.Upstream.SpeechModel,
		"voice", cfg.Upstream.Voice,
	)
	if cfg.Upstream.Probe.Enabled {
		slog.Debug("reachability probe enabled", "schedule", cfg.Upstream.Probe.Schedule)
	}
}

// configSource names where the active configuration came from for the
// startup banner.
func configSource() string {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		return "built-in defaults"
	}
	return cfgFile
}
