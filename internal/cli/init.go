package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/buildnotes/internal/config"
	"github.com/ariel-frischer/buildnotes/internal/errors"
	"github.com/ariel-frischer/buildnotes/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config template to .buildnotes/config.yml",
	Long: `Write a fully commented configuration template to .buildnotes/config.yml.

The template documents every option with its default value. An existing
config is never overwritten unless --force is given.

Examples:
  buildnotes init
  buildnotes init --force    # Overwrite an existing config`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing config without prompting")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := config.ProjectConfigPath()

	if _, err := os.Stat(path); err == nil && !force {
		return errors.NewConfigError(
			fmt.Sprintf("config already exists at %s", path),
			"Re-run with --force to overwrite it",
		)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithMessage(err, errors.Runtime, "creating config directory")
	}
	if err := os.WriteFile(path, []byte(config.DefaultConfigTemplate), 0o644); err != nil {
		return errors.WrapWithMessage(err, errors.Runtime, "writing config template")
	}

	output.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Config written to %s", path))
	return nil
}
