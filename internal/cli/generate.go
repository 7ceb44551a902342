package cli

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/buildnotes/internal/buildinfo"
	"github.com/ariel-frischer/buildnotes/internal/config"
	"github.com/ariel-frischer/buildnotes/internal/connector/github"
	"github.com/ariel-frischer/buildnotes/internal/connector/gitrepo"
	"github.com/ariel-frischer/buildnotes/internal/errors"
	"github.com/ariel-frischer/buildnotes/internal/output"
	"github.com/ariel-frischer/buildnotes/internal/progress"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate build information for the current checkout",
	Long: `Generate categorized build information between the target version and
its baseline.

The target version is read from the current checkout: the latest version
tag must point at HEAD. Use --target to pin a version instead, for example
when generating notes for a release that is not tagged yet.

The baseline is the previous release for release targets, and the
immediately preceding version for pre-release targets. All pull requests,
commits, and linked issues between the two are collected and categorized
by their labels.

Examples:
  buildnotes generate
  buildnotes generate --target 2.0.0-rc.1
  buildnotes generate --format json --output buildinfo.json
  buildnotes generate --github none   # local git data only`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("repo", "r", "", "Path to the git repository (default: current directory)")
	generateCmd.Flags().StringP("target", "t", "", "Target version (default: detect from checkout)")
	generateCmd.Flags().StringP("format", "f", "", "Output format: yaml or json")
	generateCmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	generateCmd.Flags().String("github", "", "GitHub repository slug owner/name ('none' disables enrichment)")
	generateCmd.Flags().Bool("known-issues", true, "Include open bugs as known issues")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadGenerateConfig(cmd)
	if err != nil {
		return err
	}

	conn, err := buildConnector(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	spin := progress.NewSpinner("Assembling build information...")
	progress.StartSpinner(spin)
	info, err := buildinfo.NewAssembler(conn).Assemble(cmd.Context(), cfg.Target)
	progress.StopSpinner(spin)
	if err != nil {
		return assembleError(err)
	}

	if !cfg.IncludeKnownIssues {
		info.KnownIssues = nil
	}

	printResolution(cmd.ErrOrStderr(), info)

	encoded, err := encodeBuildInfo(info, cfg.OutputFormat)
	if err != nil {
		return errors.WrapWithMessage(err, errors.Runtime, "encoding build information")
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		_, err = cmd.OutOrStdout().Write(encoded)
		return err
	}

	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		return errors.WrapWithMessage(err, errors.Runtime, "writing report")
	}
	output.PrintSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Build information written to %s", outputPath))
	return nil
}

// loadGenerateConfig loads the layered configuration and applies flag
// overrides. Flags win over every config source.
func loadGenerateConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.Configuration,
			"Check the syntax of .buildnotes/config.yml",
			"Run 'buildnotes init' to write a fresh config template")
	}

	if cmd.Flags().Changed("repo") {
		cfg.RepoPath, _ = cmd.Flags().GetString("repo")
	}
	if cmd.Flags().Changed("target") {
		cfg.Target, _ = cmd.Flags().GetString("target")
	}
	if cmd.Flags().Changed("format") {
		cfg.OutputFormat, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("github") {
		cfg.GitHub.Repository, _ = cmd.Flags().GetString("github")
	}
	if cmd.Flags().Changed("known-issues") {
		cfg.IncludeKnownIssues, _ = cmd.Flags().GetBool("known-issues")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, errors.Configuration)
	}

	if cfg.Target != "" {
		if _, ok := buildinfo.ParseVersion(cfg.Target); !ok {
			return nil, errors.InvalidTargetVersion(cfg.Target)
		}
	}
	return cfg, nil
}

// buildConnector opens the local repository and layers the GitHub connector
// on top when a repository slug is configured or detectable.
func buildConnector(cfg *config.Configuration, warn io.Writer) (buildinfo.Connector, error) {
	base, err := gitrepo.Open(cfg.RepoPath)
	if err != nil {
		return nil, errors.NotARepository(cfg.RepoPath)
	}

	if cfg.GitHub.Repository == "none" {
		return base, nil
	}

	slug := cfg.GitHub.Repository
	if slug == "" {
		slug = base.RemoteSlug()
	}
	if slug == "" {
		output.PrintWarning(warn, "no GitHub remote detected; using local git history only")
		return base, nil
	}

	return github.New(base, slug,
		github.WithAPIURL(cfg.GitHub.APIURL),
		github.WithMaxParallel(cfg.GitHub.MaxParallel)), nil
}

// assembleError converts assembly failures into structured CLI errors.
func assembleError(err error) error {
	if stderrors.Is(err, buildinfo.ErrVersionResolution) {
		return errors.TargetDetectionFailed(err.Error())
	}
	return errors.ConnectorFetchFailed(err)
}

// printResolution reports the resolved version range on stderr.
func printResolution(w io.Writer, info *buildinfo.BuildInformation) {
	from := ""
	if info.FromVersion != nil {
		from = info.FromVersion.FullVersion
	}
	output.PrintResolution(w, from, info.ToVersion.FullVersion)
}

// encodeBuildInfo renders the report in the requested format.
func encodeBuildInfo(info *buildinfo.BuildInformation, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}
