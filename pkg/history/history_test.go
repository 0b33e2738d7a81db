package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/devrank/pkg/history"
)

// Test constants to avoid magic strings/numbers.
const (
	testHash1 = "aaa111"
	testHash2 = "bbb222"
	testEmail = "Dev@Example.com"
)

func TestDetectRevert(t *testing.T) {
	t.Parallel()

	assert.True(t, history.DetectRevert(`Revert "add feature"`))
	assert.True(t, history.DetectRevert("partial REVERT of parser"))
	assert.False(t, history.DetectRevert("add parser"))
}

func TestDetectMerge(t *testing.T) {
	t.Parallel()

	assert.True(t, history.DetectMerge("Merge branch 'main'"))
	assert.True(t, history.DetectMerge("post-merge cleanup"))
	assert.False(t, history.DetectMerge("fix: parser bounds"))
}

func TestNewCommit_DerivesFlagsAndIdentity(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	c := history.NewCommit(testHash1, "Dev", testEmail, when, `Revert "Merge branch x"`)

	assert.True(t, c.IsRevert)
	assert.True(t, c.IsMerge)
	assert.Equal(t, "dev@example.com", c.Identity())
	assert.Equal(t, "2024-03-05 14:30:00", c.Date())
}

func TestSubjectOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "feat: add x", history.SubjectOf("feat: add x\r\n\nbody"))
	assert.Equal(t, "single", history.SubjectOf("single"))
}

func TestCommitStats_Impact(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30, history.CommitStats{FilesChanged: 3, Insertions: 7, Deletions: 3}.Impact())
	assert.Equal(t, 0, history.CommitStats{}.Impact())
}

func TestNewFileChange_Ext(t *testing.T) {
	t.Parallel()

	fc := history.NewFileChange(testHash1, "src/App.PY", history.ChangeModified, "")
	assert.Equal(t, ".py", fc.Ext)

	fc = history.NewFileChange(testHash1, "Makefile", history.ChangeAdded, "")
	assert.Empty(t, fc.Ext)
}

func TestIsIgnored(t *testing.T) {
	t.Parallel()

	assert.True(t, history.IsIgnored("web/package-lock.json", history.DefaultIgnoredFiles))
	assert.False(t, history.IsIgnored("web/package.json", history.DefaultIgnoredFiles))
}

func TestSnapshot_MissingLookups(t *testing.T) {
	t.Parallel()

	snap := history.NewSnapshot()

	assert.Equal(t, history.CommitStats{}, snap.StatsFor("missing"))
	assert.Nil(t, snap.ChangesFor("missing"))

	var nilSnap *history.Snapshot
	assert.Equal(t, history.CommitStats{}, nilSnap.StatsFor("x"))
}

func TestFilter_Apply(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	snap := history.NewSnapshot()
	snap.Commits = []history.Commit{
		history.NewCommit(testHash1, "A", "a@x.com", base, "feat: one"),
		history.NewCommit(testHash2, "B", "b@x.com", base.Add(48*time.Hour), `Revert "feat: one"`),
	}
	snap.Stats[testHash1] = history.CommitStats{FilesChanged: 1, Insertions: 2}
	snap.Stats[testHash2] = history.CommitStats{FilesChanged: 1, Deletions: 2}

	out := history.Filter{IgnoreReverts: true}.Apply(snap)
	require.Len(t, out.Commits, 1)
	assert.Equal(t, testHash1, out.Commits[0].Hash)
	assert.NotContains(t, out.Stats, testHash2)

	since := base.Add(24 * time.Hour)
	out = history.Filter{Since: &since}.Apply(snap)
	require.Len(t, out.Commits, 1)
	assert.Equal(t, testHash2, out.Commits[0].Hash)
}

func TestStaticSource_Collect(t *testing.T) {
	t.Parallel()

	snap, err := history.StaticSource{}.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Commits)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = history.StaticSource{}.Collect(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
