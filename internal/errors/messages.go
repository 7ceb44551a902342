package errors

import "fmt"

// Common error messages for the buildnotes CLI.
// These templates ensure consistent, actionable error messages.

// NotARepository creates an error for a path that is not a git repository.
func NotARepository(path string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("%s is not inside a git repository", path),
		"Run buildnotes from within a repository",
		"Or pass the repository location with --repo <path>",
	)
}

// TargetDetectionFailed creates an error for automatic target detection
// failing, either because no version tags exist or because the checkout is
// not at the latest tagged commit.
func TargetDetectionFailed(detail string) *CLIError {
	return NewResolutionError(
		detail,
		"Check out the tagged commit you want a changelog for",
		"Tag a release first if none exist (e.g. 'git tag v1.0.0')",
		"Or pass the version explicitly with --target <version>",
	)
}

// InvalidTargetVersion creates an error for an explicit target that does not
// match the version grammar.
func InvalidTargetVersion(target string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("target version %q does not match the version grammar", target),
		"buildnotes generate --target <major.minor.patch[-pre][+meta]>",
		"Use a semantic version like 1.2.0 or v2.0.0-rc.1",
	)
}

// ConnectorFetchFailed creates an error for a structural fetch failure.
func ConnectorFetchFailed(err error) *CLIError {
	return WrapWithMessage(err, Connector,
		"fetching repository data failed",
		"Check that the repository and its remotes are reachable",
		"Re-run with --debug to see the failing call",
	)
}
