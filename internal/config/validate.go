package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	FilePath string
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	switch {
	case e.FilePath != "" && e.Field != "":
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	case e.FilePath != "":
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	case e.Field != "":
		return fmt.Sprintf("field '%s': %s", e.Field, e.Message)
	default:
		return e.Message
	}
}

// ValidateYAMLSyntax checks if the YAML file has valid syntax.
// A missing or empty file is not an error; defaults apply.
func ValidateYAMLSyntax(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}
	return nil
}

// Validate checks configuration values after all sources are merged.
func Validate(cfg *Configuration) error {
	switch cfg.OutputFormat {
	case "yaml", "json":
	default:
		return &ValidationError{
			Field:   "output_format",
			Message: fmt.Sprintf("invalid value %q (expected: yaml or json)", cfg.OutputFormat),
		}
	}

	if cfg.GitHub.MaxParallel < 1 {
		return &ValidationError{
			Field:   "github.max_parallel",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.GitHub.MaxParallel),
		}
	}

	if slug := cfg.GitHub.Repository; slug != "" && slug != "none" {
		parts := strings.Split(slug, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return &ValidationError{
				Field:   "github.repository",
				Message: fmt.Sprintf("invalid slug %q (expected: owner/name)", slug),
			}
		}
	}

	return nil
}
