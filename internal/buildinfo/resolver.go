package buildinfo

import (
	"errors"
	"fmt"
	"strings"
)

// ErrVersionResolution indicates the target or baseline version cannot be
// determined: there is no tag history and no explicit target, or automatic
// detection cannot confirm the checkout matches the latest tag. It is fatal
// and propagates to the caller without retry.
var ErrVersionResolution = errors.New("version resolution failed")

// ResolveBaseline finds the comparison baseline for target within
// orderedTags, which must be chronologically ascending (creation order) and
// deduplicated by tag name. A nil result means the comparison range starts
// from the beginning of history.
//
// For a pre-release target the baseline is the immediately preceding tag of
// any kind. For a release target the walk skips pre-release tags until the
// first release tag is found.
func ResolveBaseline(orderedTags []Version, target Version) *Version {
	idx := indexOf(orderedTags, target)

	if target.IsPreRelease {
		switch {
		case idx > 0:
			return &orderedTags[idx-1]
		case idx == -1 && len(orderedTags) > 0:
			// Target not yet tagged: compare against the latest tag.
			return &orderedTags[len(orderedTags)-1]
		default:
			// First tag in history, or empty history.
			return nil
		}
	}

	start := -1
	switch {
	case idx > 0:
		start = idx - 1
	case idx == -1:
		start = len(orderedTags) - 1
	}

	for i := start; i >= 0; i-- {
		if !orderedTags[i].IsPreRelease {
			return &orderedTags[i]
		}
	}
	return nil
}

// indexOf locates target in orderedTags by exact FullVersion match,
// case-insensitive. Returns -1 if absent.
func indexOf(orderedTags []Version, target Version) int {
	for i := range orderedTags {
		if strings.EqualFold(orderedTags[i].FullVersion, target.FullVersion) {
			return i
		}
	}
	return -1
}

// ResolveTarget determines the target version for an assembly run.
//
// When an explicit version string is supplied it is parsed and used as-is.
// Otherwise the last entry of orderedTags must resolve to the same commit
// hash as the current checkout; automatic mode only works when the checkout
// is exactly at a tagged commit. hashForTag resolves a tag name to a commit
// hash, with the empty string meaning the current checkout.
func ResolveTarget(orderedTags []Version, explicit string, hashForTag func(tag string) (string, error)) (*Version, error) {
	if explicit != "" {
		v, ok := ParseVersion(explicit)
		if !ok {
			return nil, fmt.Errorf("%w: %q does not match the version grammar", ErrVersionResolution, explicit)
		}
		return v, nil
	}

	if len(orderedTags) == 0 {
		return nil, fmt.Errorf("%w: no version tags found and no explicit target given", ErrVersionResolution)
	}

	head, err := hashForTag("")
	if err != nil {
		return nil, fmt.Errorf("resolving current checkout hash: %w", err)
	}

	latest := orderedTags[len(orderedTags)-1]
	tagged, err := hashForTag(latest.Tag)
	if err != nil {
		return nil, fmt.Errorf("resolving hash for tag %q: %w", latest.Tag, err)
	}

	if !strings.EqualFold(head, tagged) {
		return nil, fmt.Errorf("%w: checkout %s does not match latest tag %q (%s); pass an explicit target version",
			ErrVersionResolution, shortHash(head), latest.Tag, shortHash(tagged))
	}

	v := latest
	return &v, nil
}

// shortHash abbreviates a commit hash for error messages.
func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
