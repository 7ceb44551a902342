package buildinfo

import (
	"sort"
	"strconv"
	"strings"
)

// LinkedIssuesFunc returns the ids of issues linked to a change unit.
type LinkedIssuesFunc func(ChangeUnit) ([]string, error)

// IssueDetailsFunc fetches the details for a single issue id.
type IssueDetailsFunc func(string) (IssueDetails, error)

// categoryKeywords maps label substrings to categories. Order matters:
// earlier rows win when a label contains multiple keywords.
var categoryKeywords = []struct {
	keyword  string
	category Category
}{
	{"bug", CategoryBug},
	{"defect", CategoryBug},
	{"feature", CategoryFeature},
	{"enhancement", CategoryFeature},
	{"documentation", CategoryDocumentation},
	{"performance", CategoryPerformance},
	{"security", CategorySecurity},
}

// CategoryForLabels derives a category from a label list. Each label is
// lower-cased and tested for substring containment against the keyword
// table; the first matching label wins. No match yields CategoryOther.
func CategoryForLabels(labels []string) Category {
	for _, label := range labels {
		lower := strings.ToLower(label)
		for _, row := range categoryKeywords {
			if strings.Contains(lower, row.keyword) {
				return row.category
			}
		}
	}
	return CategoryOther
}

// accumulator is the dedup state folded over change units during
// aggregation. It is a plain value passed through the fold, so the
// aggregation step stays side-effect free and independently testable.
type accumulator struct {
	processed map[string]struct{}
	changes   []ChangeItem
	bugs      []ChangeItem
}

func newAccumulator() accumulator {
	return accumulator{processed: make(map[string]struct{})}
}

// seen reports whether an id has already been attributed to a list.
func (a accumulator) seen(id string) bool {
	_, ok := a.processed[id]
	return ok
}

// absorb attributes an item to exactly one list based on its category and
// marks its id processed. Items whose id was already processed are dropped.
func (a accumulator) absorb(item ChangeItem) accumulator {
	if a.seen(item.ID) {
		return a
	}
	a.processed[item.ID] = struct{}{}
	if item.Category == CategoryBug {
		a.bugs = append(a.bugs, item)
	} else {
		a.changes = append(a.changes, item)
	}
	return a
}

// Aggregate deduplicates and categorizes change units and their linked
// issues into changes, bug-fixes, and known issues.
//
// Units are folded in the connector-provided order (commit/merge chronology
// within the baseline..target range). A unit with no linked issues becomes a
// change item itself, categorized by its own labels. Linked issues are
// fetched once each; a failed detail lookup degrades to an "other"-typed
// fallback entry instead of aborting the run. Open issues that were not
// resolved within the range and carry a bug category become known issues.
//
// Each output list is stable-sorted by OrderIndex so the result is
// deterministic regardless of the order paginated connector data arrived in.
// An id is added to exactly one of the three lists, at most once total.
func Aggregate(units []ChangeUnit, linked LinkedIssuesFunc, details IssueDetailsFunc, open []IssueDetails) (changes, bugs, knownIssues []ChangeItem) {
	acc := newAccumulator()
	for _, unit := range units {
		acc = absorbUnit(acc, unit, linked, details)
	}

	for _, issue := range open {
		if acc.seen(issue.ID) {
			continue
		}
		if CategoryForLabels(issue.Labels) != CategoryBug {
			continue
		}
		acc.processed[issue.ID] = struct{}{}
		knownIssues = append(knownIssues, issueItem(issue))
	}

	sortByOrderIndex(acc.changes)
	sortByOrderIndex(acc.bugs)
	sortByOrderIndex(knownIssues)

	return acc.changes, acc.bugs, knownIssues
}

// absorbUnit folds a single change unit into the accumulator.
func absorbUnit(acc accumulator, unit ChangeUnit, linked LinkedIssuesFunc, details IssueDetailsFunc) accumulator {
	ids, err := linked(unit)
	if err != nil {
		// Enrichment failure: treat the unit as having no linked issues.
		ids = nil
	}

	if len(ids) == 0 {
		return acc.absorb(ChangeItem{
			ID:         unit.ID(),
			Title:      unit.Title,
			URL:        unit.URL,
			Category:   CategoryForLabels(unit.Labels),
			OrderIndex: unit.Number,
		})
	}

	for _, id := range ids {
		if acc.seen(id) {
			continue
		}
		issue, err := details(id)
		if err != nil {
			// Degrade to a bare entry so one rate-limited lookup does not
			// abort the whole run.
			acc = acc.absorb(ChangeItem{
				ID:         id,
				Title:      id,
				Category:   CategoryOther,
				OrderIndex: numberFromID(id),
			})
			continue
		}
		acc = acc.absorb(issueItem(issue))
	}
	return acc
}

// issueItem converts connector issue details into a change item.
func issueItem(issue IssueDetails) ChangeItem {
	return ChangeItem{
		ID:         issue.ID,
		Title:      issue.Title,
		URL:        issue.URL,
		Category:   CategoryForLabels(issue.Labels),
		OrderIndex: issue.Number,
	}
}

// numberFromID extracts the numeric part of an "#N" style id, or 0.
func numberFromID(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "#"))
	if err != nil {
		return 0
	}
	return n
}

func sortByOrderIndex(items []ChangeItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].OrderIndex < items[j].OrderIndex
	})
}
