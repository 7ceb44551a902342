package buildinfo

import (
	"context"
	"fmt"
)

// ChangeUnit is a pull request or commit used as the unit of change
// attribution within the baseline..target range.
type ChangeUnit struct {
	// Number is the pull request number, or 0 for plain commits.
	Number int
	// Hash is the commit hash the unit was derived from, when known.
	Hash string
	// Title is the PR title or commit subject line.
	Title string
	// URL links to the PR or commit, when the connector can provide one.
	URL string
	// Labels are the PR labels used for categorization.
	Labels []string
}

// ID returns the identity of the unit when it stands in for itself as a
// change item: "#N" for pull requests, the abbreviated hash otherwise.
func (u ChangeUnit) ID() string {
	if u.Number > 0 {
		return fmt.Sprintf("#%d", u.Number)
	}
	return shortHash(u.Hash)
}

// IssueDetails describes a single issue as reported by the connector.
type IssueDetails struct {
	// ID is the issue identity (e.g. "#42").
	ID string
	// Number is the numeric issue number, used as the sort index.
	Number int
	Title  string
	URL    string
	Labels []string
}

// Connector is the abstract repository capability the core depends on.
// Implementations talk to a version-control or issue-tracking service via
// local git, REST, or anything else; the core never sees the transport.
//
// TagHistory, HashForTag, and ChangeUnitsBetween report structural facts:
// failures there abort assembly. LinkedIssues, IssueDetails, and OpenIssues
// report enrichment facts: callers degrade gracefully when they fail.
type Connector interface {
	// TagHistory returns raw tags reachable from the current branch,
	// chronologically ascending.
	TagHistory(ctx context.Context) ([]string, error)

	// HashForTag returns the commit hash a tag points to. The empty string
	// means the current checkout.
	HashForTag(ctx context.Context, tag string) (string, error)

	// ChangeUnitsBetween returns the change units in the from..to range in
	// commit/merge chronology. A nil from means from the beginning of history.
	ChangeUnitsBetween(ctx context.Context, from *Version, to Version) ([]ChangeUnit, error)

	// LinkedIssues returns the ids of issues linked to (closed by) a unit.
	LinkedIssues(ctx context.Context, unit ChangeUnit) ([]string, error)

	// IssueDetails fetches title, url, and labels for a single issue id.
	IssueDetails(ctx context.Context, id string) (IssueDetails, error)

	// OpenIssues returns all currently open issues.
	OpenIssues(ctx context.Context) ([]IssueDetails, error)
}
