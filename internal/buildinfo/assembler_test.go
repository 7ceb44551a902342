package buildinfo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConnector is an in-memory Connector for assembler tests.
type fakeConnector struct {
	tags       []string
	hashes     map[string]string // tag -> hash, "" is the current checkout
	units      []ChangeUnit
	linked     map[int][]string // unit number -> issue ids
	issues     map[string]IssueDetails
	open       []IssueDetails
	tagErr     error
	hashErr    error
	unitsErr   error
	openErr    error
	detailsErr error

	unitsFrom *Version
	unitsTo   *Version
}

func (f *fakeConnector) TagHistory(context.Context) ([]string, error) {
	return f.tags, f.tagErr
}

func (f *fakeConnector) HashForTag(_ context.Context, tag string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	h, ok := f.hashes[tag]
	if !ok {
		return "", fmt.Errorf("no hash for tag %q", tag)
	}
	return h, nil
}

func (f *fakeConnector) ChangeUnitsBetween(_ context.Context, from *Version, to Version) ([]ChangeUnit, error) {
	f.unitsFrom = from
	f.unitsTo = &to
	return f.units, f.unitsErr
}

func (f *fakeConnector) LinkedIssues(_ context.Context, unit ChangeUnit) ([]string, error) {
	return f.linked[unit.Number], nil
}

func (f *fakeConnector) IssueDetails(_ context.Context, id string) (IssueDetails, error) {
	if f.detailsErr != nil {
		return IssueDetails{}, f.detailsErr
	}
	issue, ok := f.issues[id]
	if !ok {
		return IssueDetails{}, fmt.Errorf("issue %s not found", id)
	}
	return issue, nil
}

func (f *fakeConnector) OpenIssues(context.Context) ([]IssueDetails, error) {
	return f.open, f.openErr
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{
		tags: []string{"v1.0.0", "ver-1.1.0", "release_2.0.0-beta.1", "v2.0.0-rc.1"},
		hashes: map[string]string{
			"":                     "aaaa0004",
			"v1.0.0":               "aaaa0001",
			"ver-1.1.0":            "aaaa0002",
			"release_2.0.0-beta.1": "aaaa0003",
			"v2.0.0-rc.1":          "aaaa0004",
		},
		units: []ChangeUnit{
			{Number: 10, Title: "Add export command", Labels: []string{"feature"}},
			{Number: 11, Title: "Fix crash on empty input", Labels: []string{"bug"}},
		},
		linked: map[int][]string{
			11: {"#8"},
		},
		issues: map[string]IssueDetails{
			"#8": {ID: "#8", Number: 8, Title: "Crash on empty input", Labels: []string{"bug"}},
		},
		open: []IssueDetails{
			{ID: "#15", Number: 15, Title: "Slow startup", Labels: []string{"bug"}},
		},
	}
}

func TestAssemble_AutomaticTarget(t *testing.T) {
	conn := newFakeConnector()
	info, err := NewAssembler(conn).Assemble(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "v2.0.0-rc.1", info.ToVersion.Tag)
	require.NotNil(t, info.FromVersion)
	assert.Equal(t, "release_2.0.0-beta.1", info.FromVersion.Tag)
	assert.Equal(t, "aaaa0004", info.ToHash)
	assert.Equal(t, "aaaa0003", info.FromHash)

	assert.Equal(t, []string{"#10"}, itemIDs(info.Changes))
	assert.Equal(t, []string{"#8"}, itemIDs(info.Bugs))
	assert.Equal(t, []string{"#15"}, itemIDs(info.KnownIssues))

	// The connector saw the resolved range.
	require.NotNil(t, conn.unitsFrom)
	assert.Equal(t, "release_2.0.0-beta.1", conn.unitsFrom.Tag)
	assert.Equal(t, "v2.0.0-rc.1", conn.unitsTo.Tag)
}

func TestAssemble_ExplicitReleaseTarget(t *testing.T) {
	conn := newFakeConnector()
	info, err := NewAssembler(conn).Assemble(context.Background(), "2.0.0")
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", info.ToVersion.FullVersion)
	require.NotNil(t, info.FromVersion)
	assert.Equal(t, "ver-1.1.0", info.FromVersion.Tag)
	// Target is not tagged yet: its hash is the current checkout.
	assert.Equal(t, "aaaa0004", info.ToHash)
	assert.Equal(t, "aaaa0002", info.FromHash)
}

func TestAssemble_NoBaseline(t *testing.T) {
	conn := newFakeConnector()
	conn.tags = []string{"v1.0.0"}
	conn.hashes[""] = "aaaa0001"

	info, err := NewAssembler(conn).Assemble(context.Background(), "")
	require.NoError(t, err)

	assert.Nil(t, info.FromVersion)
	assert.Empty(t, info.FromHash)
	assert.Equal(t, "v1.0.0", info.ToVersion.Tag)
}

func TestAssemble_Errors(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*fakeConnector)
		target  string
		wantErr error
	}{
		"no tags and no explicit target": {
			mutate: func(f *fakeConnector) { f.tags = nil },
			wantErr: ErrVersionResolution,
		},
		"checkout not at latest tag": {
			mutate: func(f *fakeConnector) { f.hashes[""] = "deadbeef" },
			wantErr: ErrVersionResolution,
		},
		"tag history fetch fails fast": {
			mutate: func(f *fakeConnector) { f.tagErr = errors.New("remote unavailable") },
		},
		"hash fetch fails fast": {
			mutate: func(f *fakeConnector) { f.hashErr = errors.New("remote unavailable") },
			target: "2.0.0",
		},
		"change unit fetch fails fast": {
			mutate: func(f *fakeConnector) { f.unitsErr = errors.New("remote unavailable") },
			target: "2.0.0",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			conn := newFakeConnector()
			tc.mutate(conn)

			_, err := NewAssembler(conn).Assemble(context.Background(), tc.target)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestAssemble_OpenIssueFailureDegrades(t *testing.T) {
	conn := newFakeConnector()
	conn.openErr = errors.New("rate limited")

	info, err := NewAssembler(conn).Assemble(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, info.KnownIssues)
	assert.NotEmpty(t, info.Changes)
}
