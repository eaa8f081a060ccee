package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"calliope-hq/calliope/pkg/cli"
	"calliope-hq/calliope/pkg/config"
)

var validateFlags struct {
	output string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a Calliope configuration file without starting the server.

The validate command loads the configuration, applies defaults and
environment variable overrides, and reports every validation error it
finds. It exits non-zero when the configuration is invalid, so it can
gate deployments in CI.

Examples:
  # Validate the default config file
  calliope validate

  # Validate a specific file
  calliope validate --config /etc/calliope/config.yaml

  # JSON output for CI/CD
  calliope validate --output json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "text", "output format: text, json")
}

// configCheckResult is the validate command's report for one file.
type configCheckResult struct {
	File   string       `json:"file"`
	Valid  bool         `json:"valid"`
	Errors []fieldIssue `json:"errors,omitempty"`
}

// fieldIssue is a single configuration problem.
type fieldIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func validateConfig(cmd *cobra.Command, args []string) error {
	result := checkConfigFile(cfgFile)

	if validateFlags.output == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, result); err != nil {
			return err
		}
	} else {
		printCheckResult(result)
	}

	if !result.Valid {
		return cli.NewCommandError("validate", fmt.Errorf("configuration invalid"))
	}
	return nil
}

func checkConfigFile(path string) configCheckResult {
	result := configCheckResult{File: path, Valid: true}

	if _, err := config.LoadConfigWithEnvOverrides(path); err != nil {
		result.Valid = false

		var verr config.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				result.Errors = append(result.Errors, fieldIssue{
					Field:   fe.Field,
					Message: fe.Message,
				})
			}
		} else {
			// Read or parse failure, there is nothing field-level to report.
			result.Errors = append(result.Errors, fieldIssue{Message: err.Error()})
		}
	}
	return result
}

func printCheckResult(result configCheckResult) {
	fmt.Printf("Validating %s...\n", result.File)

	if result.Valid {
		fmt.Println("✓ Syntax valid")
		fmt.Println("✓ Configuration valid")
		return
	}

	for _, issue := range result.Errors {
		if issue.Field != "" {
			fmt.Printf("✗ Error: %s: %s\n", issue.Field, issue.Message)
		} else {
			fmt.Printf("✗ Error: %s\n", issue.Message)
		}
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d error(s)\n", len(result.Errors))
}
