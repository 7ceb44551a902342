// Package github layers GitHub issue and pull-request enrichment over a
// structural connector (usually gitrepo). Tag history and commit hashes come
// from the underlying repository; change units are enriched with their
// associated pull requests, and issue details and open issues are fetched
// from the GitHub REST API.
//
// Enrichment calls degrade gracefully: a failed lookup falls back to the
// plain commit data so a partial report is still produced. Structural calls
// keep their fail-fast behavior.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ariel-frischer/buildnotes/internal/buildinfo"
)

// debugLogger is a function that logs debug messages when debug mode is
// enabled. By default it is a no-op. Set it via SetDebugLogger.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for GitHub API operations.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

const (
	// DefaultAPIURL is the public GitHub REST endpoint.
	DefaultAPIURL = "https://api.github.com"
	// DefaultMaxParallel bounds concurrent pull-request lookups.
	DefaultMaxParallel = 4
	// defaultTimeout prevents indefinite hangs on API calls.
	defaultTimeout = 30 * time.Second
	// perPage is the page size used for paginated listings.
	perPage = 100
)

// Connector enriches a structural connector with GitHub data.
type Connector struct {
	base        buildinfo.Connector
	client      *http.Client
	apiURL      string
	slug        string // "owner/name"
	token       string
	maxParallel int
}

// Option configures a Connector.
type Option func(*Connector)

// WithAPIURL overrides the API endpoint (e.g. for GitHub Enterprise or tests).
func WithAPIURL(apiURL string) Option {
	return func(c *Connector) { c.apiURL = strings.TrimSuffix(apiURL, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connector) { c.client = client }
}

// WithToken sets the bearer token. By default the GITHUB_TOKEN environment
// variable is used when present.
func WithToken(token string) Option {
	return func(c *Connector) { c.token = token }
}

// WithMaxParallel bounds concurrent pull-request lookups.
func WithMaxParallel(n int) Option {
	return func(c *Connector) {
		if n >= 1 {
			c.maxParallel = n
		}
	}
}

// New creates a Connector for the repository identified by slug
// ("owner/name"), delegating structural calls to base.
func New(base buildinfo.Connector, slug string, opts ...Option) *Connector {
	c := &Connector{
		base:        base,
		client:      &http.Client{Timeout: defaultTimeout},
		apiURL:      DefaultAPIURL,
		slug:        slug,
		token:       os.Getenv("GITHUB_TOKEN"),
		maxParallel: DefaultMaxParallel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TagHistory delegates to the structural connector.
func (c *Connector) TagHistory(ctx context.Context) ([]string, error) {
	return c.base.TagHistory(ctx)
}

// HashForTag delegates to the structural connector.
func (c *Connector) HashForTag(ctx context.Context, tag string) (string, error) {
	return c.base.HashForTag(ctx, tag)
}

// pullResponse is the subset of the REST pull-request object we consume.
type pullResponse struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
	Body    string `json:"body"`
	Labels  []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

// issueResponse is the subset of the REST issue object we consume.
type issueResponse struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
	Labels  []struct {
		Name string `json:"name"`
	} `json:"labels"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

// ChangeUnitsBetween fetches the structural commit range, then replaces
// commits with their associated pull requests where GitHub knows of one.
// Commits squashed or merged under the same pull request collapse into a
// single unit. Lookups run concurrently with bounded parallelism and are
// fully joined before returning.
func (c *Connector) ChangeUnitsBetween(ctx context.Context, from *buildinfo.Version, to buildinfo.Version) ([]buildinfo.ChangeUnit, error) {
	units, err := c.base.ChangeUnitsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	enriched := make([]*buildinfo.ChangeUnit, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxParallel)
	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			enriched[i] = c.enrichUnit(gctx, unit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]buildinfo.ChangeUnit, 0, len(units))
	seenPR := make(map[int]bool)
	for _, unit := range enriched {
		if unit == nil {
			continue
		}
		if unit.Number > 0 {
			if seenPR[unit.Number] {
				continue
			}
			seenPR[unit.Number] = true
		}
		result = append(result, *unit)
	}

	logDebug("[github] ChangeUnitsBetween: %d commits -> %d units", len(units), len(result))
	return result, nil
}

// enrichUnit swaps a commit unit for its associated pull request when one
// exists. Lookup failures keep the plain commit unit.
func (c *Connector) enrichUnit(ctx context.Context, unit buildinfo.ChangeUnit) *buildinfo.ChangeUnit {
	if unit.Hash == "" {
		return &unit
	}

	var pulls []pullResponse
	path := fmt.Sprintf("/repos/%s/commits/%s/pulls", c.slug, unit.Hash)
	if err := c.get(ctx, path, nil, &pulls); err != nil {
		logDebug("[github] pull lookup for %s failed: %v", unit.Hash, err)
		return &unit
	}
	if len(pulls) == 0 {
		return &unit
	}

	pr := pulls[0]
	return &buildinfo.ChangeUnit{
		Number: pr.Number,
		Hash:   unit.Hash,
		Title:  pr.Title,
		URL:    pr.HTMLURL,
		Labels: labelNames(pr.Labels),
	}
}

// closingKeywordPattern matches issue references introduced by a closing
// keyword in a pull request body.
var closingKeywordPattern = regexp.MustCompile(`(?i)\b(?:close[sd]?|fix(?:e[sd])?|resolve[sd]?)[:\s]+#(\d+)`)

// LinkedIssues scans the pull request body for closing-keyword references.
// Units without a pull request number fall through to the structural
// connector. Lookup failures degrade to an empty result.
func (c *Connector) LinkedIssues(ctx context.Context, unit buildinfo.ChangeUnit) ([]string, error) {
	if unit.Number == 0 {
		return c.base.LinkedIssues(ctx, unit)
	}

	var pr pullResponse
	path := fmt.Sprintf("/repos/%s/pulls/%d", c.slug, unit.Number)
	if err := c.get(ctx, path, nil, &pr); err != nil {
		logDebug("[github] linked issues for #%d unavailable: %v", unit.Number, err)
		return nil, nil
	}

	var ids []string
	seen := make(map[string]bool)
	for _, m := range closingKeywordPattern.FindAllStringSubmatch(pr.Body, -1) {
		id := "#" + m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// IssueDetails fetches a single issue by its "#N" id.
func (c *Connector) IssueDetails(ctx context.Context, id string) (buildinfo.IssueDetails, error) {
	number, err := strconv.Atoi(strings.TrimPrefix(id, "#"))
	if err != nil {
		return buildinfo.IssueDetails{}, fmt.Errorf("malformed issue id %q: %w", id, err)
	}

	var issue issueResponse
	path := fmt.Sprintf("/repos/%s/issues/%d", c.slug, number)
	if err := c.get(ctx, path, nil, &issue); err != nil {
		return buildinfo.IssueDetails{}, err
	}

	return issueDetails(issue), nil
}

// OpenIssues lists all open issues, following pagination until a short page
// is returned. Pull requests (which the issues API also reports) are
// filtered out. A single malformed record is skipped, not fatal.
func (c *Connector) OpenIssues(ctx context.Context) ([]buildinfo.IssueDetails, error) {
	var issues []buildinfo.IssueDetails

	for page := 1; ; page++ {
		var raw []json.RawMessage
		query := url.Values{
			"state":    {"open"},
			"per_page": {strconv.Itoa(perPage)},
			"page":     {strconv.Itoa(page)},
		}
		if err := c.get(ctx, "/repos/"+c.slug+"/issues", query, &raw); err != nil {
			return nil, err
		}

		for _, record := range raw {
			var issue issueResponse
			if err := json.Unmarshal(record, &issue); err != nil {
				logDebug("[github] skipping malformed issue record: %v", err)
				continue
			}
			if issue.PullRequest != nil {
				continue
			}
			issues = append(issues, issueDetails(issue))
		}

		if len(raw) < perPage {
			break
		}
	}

	logDebug("[github] OpenIssues: %d issues", len(issues))
	return issues, nil
}

// get issues an authenticated GET against the REST API and decodes the JSON
// response into v.
func (c *Connector) get(ctx context.Context, path string, query url.Values, v any) error {
	endpoint := c.apiURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func issueDetails(issue issueResponse) buildinfo.IssueDetails {
	return buildinfo.IssueDetails{
		ID:     fmt.Sprintf("#%d", issue.Number),
		Number: issue.Number,
		Title:  issue.Title,
		URL:    issue.HTMLURL,
		Labels: labelNames(issue.Labels),
	}
}

func labelNames(labels []struct {
	Name string `json:"name"`
}) []string {
	if len(labels) == 0 {
		return nil
	}
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}
