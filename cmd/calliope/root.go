package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "calliope",
	Short: "Calliope - generation gateway for the Generative Language API",
	Long: `Calliope is an HTTP gateway that fronts the Google Generative Language
API with simple text and speech generation endpoints.

It holds the upstream API key so clients never need one, providing:
  - Text generation (POST /v1/generate/text)
  - Speech synthesis (POST /v1/generate/speech)
  - Request validation and size limits
  - Verbatim pass-through of upstream responses
  - Health, readiness, and Prometheus metrics endpoints

For more information, visit: https://github.com/calliope-hq/calliope`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
