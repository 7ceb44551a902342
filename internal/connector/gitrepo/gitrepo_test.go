package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/buildnotes/internal/buildinfo"
)

// repoBuilder assembles a throwaway repository with deterministic commit
// times so tag ordering is predictable.
type repoBuilder struct {
	t     *testing.T
	dir   string
	repo  *git.Repository
	wt    *git.Worktree
	clock time.Time
	seq   int
}

func newRepoBuilder(t *testing.T) *repoBuilder {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	return &repoBuilder{
		t:     t,
		dir:   dir,
		repo:  repo,
		wt:    wt,
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *repoBuilder) signature() object.Signature {
	b.clock = b.clock.Add(time.Minute)
	return object.Signature{Name: "tester", Email: "tester@example.test", When: b.clock}
}

func (b *repoBuilder) commit(message string) plumbing.Hash {
	b.t.Helper()
	b.seq++

	name := fmt.Sprintf("file%d.txt", b.seq)
	require.NoError(b.t, os.WriteFile(filepath.Join(b.dir, name), []byte(message), 0o644))
	_, err := b.wt.Add(name)
	require.NoError(b.t, err)

	sig := b.signature()
	hash, err := b.wt.Commit(message, &git.CommitOptions{Author: &sig})
	require.NoError(b.t, err)
	return hash
}

func (b *repoBuilder) tag(name string, hash plumbing.Hash) {
	b.t.Helper()
	_, err := b.repo.CreateTag(name, hash, nil)
	require.NoError(b.t, err)
}

func (b *repoBuilder) annotatedTag(name string, hash plumbing.Hash) {
	b.t.Helper()
	sig := b.signature()
	_, err := b.repo.CreateTag(name, hash, &git.CreateTagOptions{
		Tagger:  &sig,
		Message: "release " + name,
	})
	require.NoError(b.t, err)
}

func TestTagHistory_OrderedByCommitTime(t *testing.T) {
	b := newRepoBuilder(t)
	c1 := b.commit("first")
	c2 := b.commit("second")
	c3 := b.commit("third")

	// Tag creation order deliberately differs from commit order.
	b.tag("v1.1.0", c2)
	b.tag("v1.0.0", c1)
	b.annotatedTag("v2.0.0-rc.1", c3)

	tags, err := New(b.repo).TagHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0.0", "v1.1.0", "v2.0.0-rc.1"}, tags)
}

func TestHashForTag(t *testing.T) {
	b := newRepoBuilder(t)
	c1 := b.commit("first")
	c2 := b.commit("second")
	b.tag("v1.0.0", c1)
	b.annotatedTag("v1.1.0", c2)

	conn := New(b.repo)
	ctx := context.Background()

	t.Run("lightweight tag", func(t *testing.T) {
		hash, err := conn.HashForTag(ctx, "v1.0.0")
		require.NoError(t, err)
		assert.Equal(t, c1.String(), hash)
	})

	t.Run("annotated tag peels to commit", func(t *testing.T) {
		hash, err := conn.HashForTag(ctx, "v1.1.0")
		require.NoError(t, err)
		assert.Equal(t, c2.String(), hash)
	})

	t.Run("empty tag resolves current checkout", func(t *testing.T) {
		hash, err := conn.HashForTag(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, c2.String(), hash)
	})

	t.Run("unknown tag errors", func(t *testing.T) {
		_, err := conn.HashForTag(ctx, "v9.9.9")
		assert.Error(t, err)
	})
}

func TestChangeUnitsBetween(t *testing.T) {
	b := newRepoBuilder(t)
	c1 := b.commit("initial import")
	b.commit("Merge pull request #4 from dev/export\n\nAdd export command")
	b.commit("Fix crash on empty input (#6)")
	c4 := b.commit("tidy docs")
	b.tag("v1.0.0", c1)
	b.tag("v1.1.0", c4)

	conn := New(b.repo)
	from, ok := buildinfo.ParseVersion("v1.0.0")
	require.True(t, ok)
	to, ok := buildinfo.ParseVersion("v1.1.0")
	require.True(t, ok)

	units, err := conn.ChangeUnitsBetween(context.Background(), from, *to)
	require.NoError(t, err)

	require.Len(t, units, 3)
	// Oldest first, baseline commit excluded.
	assert.Equal(t, "Merge pull request #4 from dev/export", units[0].Title)
	assert.Equal(t, 4, units[0].Number)
	assert.Equal(t, 6, units[1].Number)
	assert.Equal(t, 0, units[2].Number)
	assert.Equal(t, "tidy docs", units[2].Title)
}

func TestChangeUnitsBetween_FullHistory(t *testing.T) {
	b := newRepoBuilder(t)
	b.commit("first")
	c2 := b.commit("second")
	b.tag("v1.0.0", c2)

	conn := New(b.repo)
	to, ok := buildinfo.ParseVersion("v1.0.0")
	require.True(t, ok)

	units, err := conn.ChangeUnitsBetween(context.Background(), nil, *to)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "first", units[0].Title)
}

func TestChangeUnitsBetween_UntaggedTargetUsesCheckout(t *testing.T) {
	b := newRepoBuilder(t)
	c1 := b.commit("first")
	b.tag("v1.0.0", c1)
	b.commit("work in progress")

	conn := New(b.repo)
	from, ok := buildinfo.ParseVersion("v1.0.0")
	require.True(t, ok)
	to, ok := buildinfo.ParseVersion("v1.1.0")
	require.True(t, ok)

	units, err := conn.ChangeUnitsBetween(context.Background(), from, *to)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "work in progress", units[0].Title)
}

func TestLinkedIssues(t *testing.T) {
	b := newRepoBuilder(t)
	hash := b.commit("Fix crash on empty input\n\nFixes #42, also Closes: #43 and fixes #42 again")

	conn := New(b.repo)
	ids, err := conn.LinkedIssues(context.Background(), buildinfo.ChangeUnit{Hash: hash.String()})
	require.NoError(t, err)
	assert.Equal(t, []string{"#42", "#43"}, ids)
}

func TestLinkedIssues_NoKeywords(t *testing.T) {
	b := newRepoBuilder(t)
	hash := b.commit("Mention #42 without a closing keyword")

	conn := New(b.repo)
	ids, err := conn.LinkedIssues(context.Background(), buildinfo.ChangeUnit{Hash: hash.String()})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParseRemoteSlug(t *testing.T) {
	tests := map[string]struct {
		url      string
		expected string
	}{
		"https":            {"https://github.com/acme/widget.git", "acme/widget"},
		"https no suffix":  {"https://github.com/acme/widget", "acme/widget"},
		"scp style":        {"git@github.com:acme/widget.git", "acme/widget"},
		"ssh scheme":       {"ssh://git@github.com/acme/widget.git", "acme/widget"},
		"bare path":        {"/srv/git/widget.git", ""},
		"host only":        {"https://github.com", ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseRemoteSlug(tc.url))
		})
	}
}
