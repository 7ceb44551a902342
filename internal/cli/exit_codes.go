package cli

// Exit codes for the buildnotes CLI.
// These codes support programmatic composition and CI/CD integration.
const (
	// ExitSuccess indicates successful command execution.
	ExitSuccess = 0

	// ExitRuntimeError indicates an unexpected failure during execution.
	ExitRuntimeError = 1

	// ExitResolutionFailed indicates the target or baseline version could
	// not be resolved from repository history.
	ExitResolutionFailed = 2

	// ExitInvalidArguments indicates invalid command arguments.
	ExitInvalidArguments = 3

	// ExitConfigurationError indicates invalid or missing configuration.
	ExitConfigurationError = 4

	// ExitConnectorError indicates a repository or issue-tracker fetch failed.
	ExitConnectorError = 5
)
