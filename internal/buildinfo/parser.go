package buildinfo

import "regexp"

// versionPattern is the authoritative tag grammar: an optional prefix of
// letters, hyphens, and underscores; exactly three dot-separated decimal
// groups; an optional single separator ("-" or ".") introducing a non-greedy
// pre-release identifier; an optional "+"-delimited build metadata suffix.
// The pre-release capture is non-greedy so trailing "+metadata" is never
// swallowed into the pre-release.
var versionPattern = regexp.MustCompile(
	`^[A-Za-z_-]*(\d+\.\d+\.\d+)(?:([-.])([0-9A-Za-z.-]*?))?(?:\+([0-9A-Za-z.-]+))?$`)

// ParseVersion parses a raw tag string into a structured Version.
// Tags that fail the grammar return (nil, false), never an error; callers
// filter tag collections accordingly.
//
// A version has a pre-release only if both the separator and a non-empty
// pre-release capture are present. A separator with nothing following it
// still parses, as a release.
func ParseVersion(tag string) (*Version, bool) {
	m := versionPattern.FindStringSubmatch(tag)
	if m == nil {
		return nil, false
	}

	core, sep, pre, meta := m[1], m[2], m[3], m[4]

	full := core
	if pre != "" {
		full += sep + pre
	}
	if meta != "" {
		full += "+" + meta
	}

	return &Version{
		Tag:           tag,
		SemanticCore:  core,
		PreRelease:    pre,
		BuildMetadata: meta,
		FullVersion:   full,
		IsPreRelease:  pre != "",
	}, true
}

// ParseTagHistory parses an ordered list of raw tags into versions,
// silently excluding tags that fail the grammar and deduplicating by tag
// name. Input order (chronologically ascending) is preserved.
func ParseTagHistory(tags []string) []Version {
	seen := make(map[string]bool, len(tags))
	versions := make([]Version, 0, len(tags))

	for _, tag := range tags {
		if seen[tag] {
			continue
		}
		v, ok := ParseVersion(tag)
		if !ok {
			continue
		}
		seen[tag] = true
		versions = append(versions, *v)
	}

	return versions
}
