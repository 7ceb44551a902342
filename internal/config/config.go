// Package config provides hierarchical configuration management for
// buildnotes using koanf. Configuration is loaded with priority:
// environment variables > project config (.buildnotes/config.yml) > user
// config (~/.config/buildnotes/config.yml) > defaults. Legacy JSON project
// configs are still read for compatibility.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// GitHubConfig selects the GitHub enrichment connector and its endpoint.
type GitHubConfig struct {
	// Repository is the "owner/name" slug. Empty means auto-detect from the
	// origin remote; "none" disables GitHub enrichment entirely.
	Repository string `koanf:"repository"`
	// APIURL overrides the REST endpoint, e.g. for GitHub Enterprise.
	APIURL string `koanf:"api_url"`
	// MaxParallel bounds concurrent pull-request lookups.
	MaxParallel int `koanf:"max_parallel"`
}

// Configuration represents the buildnotes CLI tool configuration.
type Configuration struct {
	// RepoPath locates the git repository to read history from.
	// Can be set via BUILDNOTES_REPO_PATH.
	RepoPath string `koanf:"repo_path"`

	// Target pins the target version instead of automatic detection.
	// Can be set via BUILDNOTES_TARGET.
	Target string `koanf:"target"`

	// OutputFormat selects the encoding of the generated build information.
	// Valid values: "yaml", "json".
	OutputFormat string `koanf:"output_format"`

	// IncludeKnownIssues controls whether open bugs are collected into the
	// known-issues list.
	IncludeKnownIssues bool `koanf:"include_known_issues"`

	// GitHub configures the enrichment connector.
	// Environment variable support via BUILDNOTES_GITHUB_* prefix.
	GitHub GitHubConfig `koanf:"github"`
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .buildnotes/config.yml)
	ProjectConfigPath string
	// WarningWriter receives legacy-format warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses legacy-format warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := opts.WarningWriter
	if warningWriter == nil {
		warningWriter = os.Stderr
	}

	for key, value := range Defaults() {
		k.Set(key, value)
	}

	if err := loadUserConfig(k); err != nil {
		return nil, err
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("BUILDNOTES_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.RepoPath = expandHomePath(cfg.RepoPath)
	return &cfg, nil
}

// loadUserConfig loads the XDG user-level YAML config when present.
func loadUserConfig(k *koanf.Koanf) error {
	path, err := UserConfigPath()
	if err != nil || !fileExists(path) {
		return nil
	}
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating user config: %w", err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load user config %s: %w", path, err)
	}
	return nil
}

// loadProjectConfig loads the project-level config. YAML is preferred;
// legacy JSON is still read with a migration warning.
func loadProjectConfig(k *koanf.Koanf, customPath string, warningWriter io.Writer, skipWarnings bool) error {
	yamlPath := ProjectConfigPath()
	if customPath != "" {
		yamlPath = customPath
	}
	legacyPath := LegacyProjectConfigPath()

	switch {
	case fileExists(yamlPath):
		if err := ValidateYAMLSyntax(yamlPath); err != nil {
			return fmt.Errorf("validating project config: %w", err)
		}
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to load project config %s: %w", yamlPath, err)
		}
	case fileExists(legacyPath):
		if err := k.Load(file.Provider(legacyPath), json.Parser()); err != nil {
			return fmt.Errorf("failed to load legacy project config %s: %w", legacyPath, err)
		}
		if !skipWarnings {
			fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", legacyPath)
			fmt.Fprintf(warningWriter, "  Rewrite it as %s in YAML format.\n\n", yamlPath)
		}
	}
	return nil
}

// envTransform converts environment variable names to config keys.
// Example: BUILDNOTES_GITHUB_API_URL -> github.api_url
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "BUILDNOTES_"))
	for _, prefix := range []string{"github_"} {
		if strings.HasPrefix(key, prefix) {
			return strings.TrimSuffix(prefix, "_") + "." + strings.TrimPrefix(key, prefix)
		}
	}
	return key
}

// expandHomePath expands ~ to the user's home directory.
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

// fileExists returns true if the file exists and is readable.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
