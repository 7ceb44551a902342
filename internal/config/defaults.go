package config

// DefaultConfigTemplate is a fully commented config template that helps
// users understand all available options.
const DefaultConfigTemplate = `# Buildnotes Configuration

# Repository settings
repo_path: "."                # Git repository to read history from
target: ""                    # Pin the target version (empty = detect from checkout)

# Output settings
output_format: yaml           # yaml | json
include_known_issues: true    # Collect open bugs into a known-issues section

# GitHub enrichment
github:
  repository: ""              # owner/name slug (empty = detect from origin, "none" = disable)
  api_url: https://api.github.com
  max_parallel: 4             # Concurrent pull-request lookups
`

// Defaults returns the default configuration values.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"repo_path":            ".",
		"target":               "",
		"output_format":        "yaml",
		"include_known_issues": true,
		"github": map[string]interface{}{
			// repository: "owner/name" slug for the GitHub connector.
			// Empty auto-detects from the origin remote; "none" disables
			// enrichment so only local git data is used.
			"repository":   "",
			"api_url":      "https://api.github.com",
			"max_parallel": 4,
		},
	}
}
