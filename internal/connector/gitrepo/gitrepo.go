// Package gitrepo provides the local git implementation of the repository
// connector. It uses the go-git library so no git CLI installation is
// required: tag history, commit hashes, and commit walks all run in-process.
// Issue enrichment is not available locally; the github connector layers it
// on top when a remote tracker is configured.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/ariel-frischer/buildnotes/internal/buildinfo"
)

// debugLogger is a function that logs debug messages when debug mode is
// enabled. By default it is a no-op. Set it via SetDebugLogger.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// ErrNoIssueTracker is returned for enrichment calls the local connector
// cannot serve. Callers degrade gracefully per the connector contract.
var ErrNoIssueTracker = errors.New("no issue tracker available for local repository")

// Connector reads tags, hashes, and commits from a local git repository.
type Connector struct {
	repo *git.Repository
}

// Open opens the repository at path, or the current working directory when
// path is empty. DetectDotGit traverses up the directory tree to find the
// repository root.
func Open(path string) (*Connector, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[gitrepo] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	return New(repo), nil
}

// New wraps an already-open repository.
func New(repo *git.Repository) *Connector {
	return &Connector{repo: repo}
}

// taggedCommit pairs a tag name with the commit it (eventually) points to.
type taggedCommit struct {
	name string
	hash plumbing.Hash
	when time.Time
}

// TagHistory returns all tags that resolve to a commit, ordered by commit
// time ascending. Annotated tags are peeled to their target commit.
func (c *Connector) TagHistory(ctx context.Context) ([]string, error) {
	iter, err := c.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tagged []taggedCommit
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commit, err := c.peelToCommit(ref.Hash())
		if err != nil {
			// Tags pointing at trees or blobs carry no history; skip them.
			logDebug("[gitrepo] skipping tag %s: %v", ref.Name().Short(), err)
			return nil
		}
		tagged = append(tagged, taggedCommit{
			name: ref.Name().Short(),
			hash: commit.Hash,
			when: commit.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	sort.SliceStable(tagged, func(i, j int) bool {
		if !tagged[i].when.Equal(tagged[j].when) {
			return tagged[i].when.Before(tagged[j].when)
		}
		return tagged[i].name < tagged[j].name
	})

	names := make([]string, len(tagged))
	for i, t := range tagged {
		names[i] = t.name
	}

	logDebug("[gitrepo] TagHistory: %d tags", len(names))
	return names, nil
}

// HashForTag resolves a tag name to its commit hash. The empty string
// resolves the current checkout (HEAD).
func (c *Connector) HashForTag(_ context.Context, tag string) (string, error) {
	if tag == "" {
		head, err := c.repo.Head()
		if err != nil {
			return "", fmt.Errorf("getting HEAD reference: %w", err)
		}
		return head.Hash().String(), nil
	}

	ref, err := c.repo.Reference(plumbing.NewTagReferenceName(tag), true)
	if err != nil {
		return "", fmt.Errorf("resolving tag %q: %w", tag, err)
	}

	commit, err := c.peelToCommit(ref.Hash())
	if err != nil {
		return "", fmt.Errorf("peeling tag %q: %w", tag, err)
	}
	return commit.Hash.String(), nil
}

// ChangeUnitsBetween walks the commit graph from the target down to (but
// excluding) the baseline and converts each commit into a change unit, in
// commit chronology (oldest first). A nil from walks to the beginning of
// history.
func (c *Connector) ChangeUnitsBetween(ctx context.Context, from *buildinfo.Version, to buildinfo.Version) ([]buildinfo.ChangeUnit, error) {
	toHash, err := c.rangeBound(ctx, to.Tag)
	if err != nil {
		return nil, err
	}

	var fromHash string
	if from != nil {
		fromHash, err = c.HashForTag(ctx, from.Tag)
		if err != nil {
			return nil, err
		}
	}

	iter, err := c.repo.Log(&git.LogOptions{From: plumbing.NewHash(toHash)})
	if err != nil {
		return nil, fmt.Errorf("walking commits: %w", err)
	}

	var units []buildinfo.ChangeUnit
	err = iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if commit.Hash.String() == fromHash {
			return storer.ErrStop
		}
		units = append(units, commitUnit(commit))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating commits: %w", err)
	}

	// Log order is newest first; the aggregation contract wants merge
	// chronology within the range.
	reverse(units)

	logDebug("[gitrepo] ChangeUnitsBetween: %d units", len(units))
	return units, nil
}

// rangeBound resolves the target side of the range: the tag when it exists,
// the current checkout otherwise (the target version may not be tagged yet).
func (c *Connector) rangeBound(ctx context.Context, tag string) (string, error) {
	if tag != "" {
		if hash, err := c.HashForTag(ctx, tag); err == nil {
			return hash, nil
		}
	}
	return c.HashForTag(ctx, "")
}

// peelToCommit resolves a hash to its commit, peeling annotated tags.
func (c *Connector) peelToCommit(hash plumbing.Hash) (*object.Commit, error) {
	tag, err := c.repo.TagObject(hash)
	if err == nil {
		return tag.Commit()
	}
	if !errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, err
	}
	return c.repo.CommitObject(hash)
}

// mergeSubjectPattern matches GitHub-style merge commit subjects
// ("Merge pull request #42 from ...").
var mergeSubjectPattern = regexp.MustCompile(`^Merge pull request #(\d+)`)

// squashSubjectPattern matches squash-merge subjects ("Add feature (#42)").
var squashSubjectPattern = regexp.MustCompile(`\(#(\d+)\)\s*$`)

// commitUnit converts a commit into a change unit. Pull request numbers are
// recovered from merge or squash subjects when present.
func commitUnit(commit *object.Commit) buildinfo.ChangeUnit {
	subject := messageSubject(commit.Message)

	number := 0
	if m := mergeSubjectPattern.FindStringSubmatch(subject); m != nil {
		number, _ = strconv.Atoi(m[1])
	} else if m := squashSubjectPattern.FindStringSubmatch(subject); m != nil {
		number, _ = strconv.Atoi(m[1])
	}

	return buildinfo.ChangeUnit{
		Number: number,
		Hash:   commit.Hash.String(),
		Title:  subject,
	}
}

// closingKeywordPattern matches issue references introduced by a closing
// keyword anywhere in a commit message.
var closingKeywordPattern = regexp.MustCompile(`(?i)\b(?:close[sd]?|fix(?:e[sd])?|resolve[sd]?)[:\s]+#(\d+)`)

// LinkedIssues scans the unit's commit message for closing-keyword issue
// references ("fixes #42"). Order of first appearance is preserved.
func (c *Connector) LinkedIssues(_ context.Context, unit buildinfo.ChangeUnit) ([]string, error) {
	if unit.Hash == "" {
		return nil, nil
	}

	commit, err := c.repo.CommitObject(plumbing.NewHash(unit.Hash))
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", unit.Hash, err)
	}

	var ids []string
	seen := make(map[string]bool)
	for _, m := range closingKeywordPattern.FindAllStringSubmatch(commit.Message, -1) {
		id := "#" + m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// IssueDetails is not available for a purely local repository.
func (c *Connector) IssueDetails(context.Context, string) (buildinfo.IssueDetails, error) {
	return buildinfo.IssueDetails{}, ErrNoIssueTracker
}

// OpenIssues is not available for a purely local repository.
func (c *Connector) OpenIssues(context.Context) ([]buildinfo.IssueDetails, error) {
	return nil, nil
}

// RemoteSlug returns the "owner/name" slug of the origin remote when it
// points at a GitHub-style URL, or "" when no remote is configured.
func (c *Connector) RemoteSlug() string {
	remote, err := c.repo.Remote("origin")
	if err != nil {
		return ""
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return ParseRemoteSlug(urls[0])
}

// ParseRemoteSlug extracts "owner/name" from HTTPS and SCP-style remote
// URLs. Returns "" when the URL has no recognizable slug.
func ParseRemoteSlug(url string) string {
	url = strings.TrimSuffix(url, ".git")

	switch {
	case strings.HasPrefix(url, "git@"):
		// git@host:owner/name
		if _, rest, ok := strings.Cut(url, ":"); ok {
			return slugTail(rest)
		}
		return ""
	case strings.Contains(url, "://"):
		// scheme://host/owner/name
		_, rest, _ := strings.Cut(url, "://")
		if _, path, ok := strings.Cut(rest, "/"); ok {
			return slugTail(path)
		}
		return ""
	default:
		return ""
	}
}

// slugTail keeps the last two path segments of a remote path.
func slugTail(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}

func messageSubject(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return strings.TrimSpace(message[:i])
	}
	return strings.TrimSpace(message)
}

func reverse(units []buildinfo.ChangeUnit) {
	for i, j := 0, len(units)-1; i < j; i, j = i+1, j-1 {
		units[i], units[j] = units[j], units[i]
	}
}
