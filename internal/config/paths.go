package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/buildnotes/config.yml
// - macOS: ~/Library/Application Support/buildnotes/config.yml
// - Windows: %APPDATA%\buildnotes\config.yml
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "buildnotes", "config.yml"), nil
}

// ProjectConfigPath returns the path to the project-level config file,
// always .buildnotes/config.yml relative to the current directory.
func ProjectConfigPath() string {
	return filepath.Join(".buildnotes", "config.yml")
}

// LegacyProjectConfigPath returns the path to the legacy project-level
// JSON config file.
func LegacyProjectConfigPath() string {
	return filepath.Join(".buildnotes", "config.json")
}
