package buildinfo

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// debugLogger is a function that logs debug messages when debug mode is
// enabled. By default it is a no-op. Set it via SetDebugLogger.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for assembly operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Assembler orchestrates version resolution, connector fetches, and change
// aggregation into a BuildInformation value. Each run is independent; no
// state is shared between invocations.
type Assembler struct {
	conn Connector
}

// NewAssembler creates an Assembler backed by the given connector.
func NewAssembler(conn Connector) *Assembler {
	return &Assembler{conn: conn}
}

// Assemble produces the BuildInformation for the given target version.
// An empty explicitTarget enables automatic target detection: the checkout
// must be exactly at the latest tagged commit.
//
// Structural fetches (tag history, commit hashes, change units) fail fast.
// Enrichment fetches (open issues, issue details) degrade gracefully so a
// partial report is still produced. Independent fetches run concurrently
// and are fully joined before the single-threaded aggregation step.
func (a *Assembler) Assemble(ctx context.Context, explicitTarget string) (*BuildInformation, error) {
	rawTags, err := a.conn.TagHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching tag history: %w", err)
	}

	orderedTags := ParseTagHistory(rawTags)
	logDebug("[assemble] %d tags, %d parsed as versions", len(rawTags), len(orderedTags))

	target, err := ResolveTarget(orderedTags, explicitTarget, func(tag string) (string, error) {
		return a.conn.HashForTag(ctx, tag)
	})
	if err != nil {
		return nil, err
	}

	baseline := ResolveBaseline(orderedTags, *target)
	if baseline != nil {
		logDebug("[assemble] target %s, baseline %s", target.Tag, baseline.Tag)
	} else {
		logDebug("[assemble] target %s, no baseline (full history)", target.Tag)
	}

	var (
		fromHash string
		toHash   string
		units    []ChangeUnit
		open     []IssueDetails
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		toHash, err = a.conn.HashForTag(gctx, targetTagName(orderedTags, *target))
		if err != nil {
			return fmt.Errorf("fetching target hash: %w", err)
		}
		return nil
	})

	if baseline != nil {
		g.Go(func() error {
			var err error
			fromHash, err = a.conn.HashForTag(gctx, baseline.Tag)
			if err != nil {
				return fmt.Errorf("fetching baseline hash: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		var err error
		units, err = a.conn.ChangeUnitsBetween(gctx, baseline, *target)
		if err != nil {
			return fmt.Errorf("fetching change units: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		issues, err := a.conn.OpenIssues(gctx)
		if err != nil {
			// Enrichment fetch: the report is still useful without the
			// known-issues section.
			logDebug("[assemble] open issues unavailable: %v", err)
			return nil
		}
		open = issues
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	changes, bugs, known := Aggregate(units,
		func(unit ChangeUnit) ([]string, error) { return a.conn.LinkedIssues(ctx, unit) },
		func(id string) (IssueDetails, error) { return a.conn.IssueDetails(ctx, id) },
		open)

	logDebug("[assemble] %d changes, %d bugs, %d known issues", len(changes), len(bugs), len(known))

	return &BuildInformation{
		FromVersion: baseline,
		ToVersion:   *target,
		FromHash:    fromHash,
		ToHash:      toHash,
		Changes:     changes,
		Bugs:        bugs,
		KnownIssues: known,
	}, nil
}

// targetTagName returns the tag name to resolve the target hash from. When
// the target is not yet tagged the empty string selects the current
// checkout instead.
func targetTagName(orderedTags []Version, target Version) string {
	if idx := indexOf(orderedTags, target); idx >= 0 {
		return orderedTags[idx].Tag
	}
	return ""
}
