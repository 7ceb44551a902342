// Package cli implements the buildnotes command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/buildnotes/internal/buildinfo"
	"github.com/ariel-frischer/buildnotes/internal/connector/github"
	"github.com/ariel-frischer/buildnotes/internal/connector/gitrepo"
	"github.com/ariel-frischer/buildnotes/internal/errors"
)

var rootCmd = &cobra.Command{
	Use:   "buildnotes",
	Short: "Generate categorized build information from repository history",
	Long: `Buildnotes turns repository history into a categorized changelog.

It resolves the target version from the current checkout (or an explicit
--target flag), picks the previous release as the baseline, and collects
the pull requests, commits, and linked issues in between into changes,
bug fixes, and known issues.`,
	Example: `  buildnotes generate
  buildnotes generate --target 2.0.0 --format json
  buildnotes generate --repo ../other-project --output buildinfo.yml`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			enableDebugLogging()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default: .buildnotes/config.yml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}

// Execute runs the root command. Structured errors are printed with their
// remediation steps; everything else gets a plain runtime error line.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	if cliErr := errors.AsCLIError(err); cliErr != nil {
		errors.PrintError(cliErr)
	} else {
		errors.PrintSimpleError(err, errors.Runtime)
	}
	return err
}

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	cliErr := errors.AsCLIError(err)
	if cliErr == nil {
		return ExitRuntimeError
	}
	switch cliErr.Category {
	case errors.Argument:
		return ExitInvalidArguments
	case errors.Configuration:
		return ExitConfigurationError
	case errors.Resolution:
		return ExitResolutionFailed
	case errors.Connector:
		return ExitConnectorError
	default:
		return ExitRuntimeError
	}
}

// enableDebugLogging routes debug output of every layer to stderr.
func enableDebugLogging() {
	logger := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "[debug] "+format+"\n", args...)
	}
	buildinfo.SetDebugLogger(logger)
	gitrepo.SetDebugLogger(logger)
	github.SetDebugLogger(logger)
}
