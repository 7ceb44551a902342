package buildinfo

// Version is the structured form of a git tag that matched the version
// grammar. It is created only by ParseVersion and never mutated afterward.
type Version struct {
	// Tag is the raw tag string the version was parsed from (e.g. "v2.0.0-rc.1").
	Tag string `yaml:"tag" json:"tag"`
	// SemanticCore is the major.minor.patch portion (e.g. "2.0.0").
	SemanticCore string `yaml:"semantic_core" json:"semantic_core"`
	// PreRelease is the pre-release identifier without its separator,
	// empty for release versions (e.g. "rc.1").
	PreRelease string `yaml:"pre_release,omitempty" json:"pre_release,omitempty"`
	// BuildMetadata is the "+"-delimited suffix, empty when absent.
	BuildMetadata string `yaml:"build_metadata,omitempty" json:"build_metadata,omitempty"`
	// FullVersion is the normalized version string: the semantic core,
	// followed by the separator and pre-release when present, followed
	// by "+" and the build metadata when present.
	FullVersion string `yaml:"full_version" json:"full_version"`
	// IsPreRelease is true exactly when PreRelease is non-empty.
	IsPreRelease bool `yaml:"is_pre_release" json:"is_pre_release"`
}

// Category classifies a change item by the kind of change it represents.
type Category int

const (
	CategoryOther Category = iota
	CategoryBug
	CategoryFeature
	CategoryDocumentation
	CategoryPerformance
	CategorySecurity
)

// String returns the lowercase name of the category.
func (c Category) String() string {
	switch c {
	case CategoryBug:
		return "bug"
	case CategoryFeature:
		return "feature"
	case CategoryDocumentation:
		return "documentation"
	case CategoryPerformance:
		return "performance"
	case CategorySecurity:
		return "security"
	default:
		return "other"
	}
}

// MarshalYAML encodes the category as its lowercase name.
func (c Category) MarshalYAML() (any, error) {
	return c.String(), nil
}

// MarshalJSON encodes the category as its lowercase name.
func (c Category) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// ChangeItem is a single categorized entry in the generated changelog.
// Identity is ID: an ID appears in at most one output list. OrderIndex is
// used only for deterministic sorting, never for identity.
type ChangeItem struct {
	ID         string   `yaml:"id" json:"id"`
	Title      string   `yaml:"title" json:"title"`
	URL        string   `yaml:"url,omitempty" json:"url,omitempty"`
	Category   Category `yaml:"category" json:"category"`
	OrderIndex int      `yaml:"-" json:"-"`
}

// BuildInformation is the final result of an assembly run: the resolved
// version range plus the categorized change lists. The three lists are
// pairwise disjoint by ID. Constructed once per invocation and never
// mutated afterward.
type BuildInformation struct {
	FromVersion *Version     `yaml:"from_version,omitempty" json:"from_version,omitempty"`
	ToVersion   Version      `yaml:"to_version" json:"to_version"`
	FromHash    string       `yaml:"from_hash,omitempty" json:"from_hash,omitempty"`
	ToHash      string       `yaml:"to_hash" json:"to_hash"`
	Changes     []ChangeItem `yaml:"changes" json:"changes"`
	Bugs        []ChangeItem `yaml:"bugs" json:"bugs"`
	KnownIssues []ChangeItem `yaml:"known_issues,omitempty" json:"known_issues,omitempty"`
}
