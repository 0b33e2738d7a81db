package gitlib_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/devrank/pkg/gitlib"
	"github.com/Sumatoshi-tech/devrank/pkg/history"
)

// Test constants to avoid magic strings/numbers.
const (
	testEmail     = "dev@example.com"
	testOtherMail = "Other@Example.com"
	testMainFile  = "main.go"
	testLockFile  = "package-lock.json"
	testImageFile = "logo.png"
	testMainV1    = "package main\n\nfunc main() {\n}\n"
	testMainV2    = "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n"
)

var testEpoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// testRepo wraps a test repository for integration testing.
type testRepo struct {
	t      *testing.T
	path   string
	native *git2go.Repository
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	return &testRepo{t: t, path: dir, native: repo}
}

func (tr *testRepo) createFile(name, content string) {
	tr.t.Helper()

	path := filepath.Join(tr.path, name)
	require.NoError(tr.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(tr.t, os.WriteFile(path, []byte(content), 0o644))
}

// writeTree stages the working directory and returns the resulting tree.
func (tr *testRepo) writeTree() *git2go.Tree {
	tr.t.Helper()

	index, err := tr.native.Index()
	require.NoError(tr.t, err)

	defer index.Free()

	require.NoError(tr.t, index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil))
	require.NoError(tr.t, index.UpdateAll([]string{"*"}, nil))
	require.NoError(tr.t, index.Write())

	treeID, err := index.WriteTree()
	require.NoError(tr.t, err)

	tree, err := tr.native.LookupTree(treeID)
	require.NoError(tr.t, err)

	return tree
}

func (tr *testRepo) headCommit() *git2go.Commit {
	tr.t.Helper()

	head, err := tr.native.Head()
	if err != nil {
		return nil
	}
	defer head.Free()

	commit, err := tr.native.LookupCommit(head.Target())
	require.NoError(tr.t, err)

	return commit
}

func (tr *testRepo) create(ref, email, message string, when time.Time, tree *git2go.Tree, parents ...*git2go.Commit) gitlib.Hash {
	tr.t.Helper()

	sig := &git2go.Signature{Name: "Dev " + email, Email: email, When: when}

	oid, err := tr.native.CreateCommit(ref, sig, sig, message, tree, parents...)
	require.NoError(tr.t, err)

	return gitlib.HashFromOid(oid)
}

// commit stages everything and commits on HEAD.
func (tr *testRepo) commit(email, message string, when time.Time) gitlib.Hash {
	tr.t.Helper()

	tree := tr.writeTree()
	defer tree.Free()

	var parents []*git2go.Commit
	if head := tr.headCommit(); head != nil {
		defer head.Free()

		parents = append(parents, head)
	}

	return tr.create("HEAD", email, message, when, tree, parents...)
}

// merge records a side commit off HEAD and merges it back.
func (tr *testRepo) merge(when time.Time) gitlib.Hash {
	tr.t.Helper()

	base := tr.headCommit()
	require.NotNil(tr.t, base)

	defer base.Free()

	baseTree, err := base.Tree()
	require.NoError(tr.t, err)

	defer baseTree.Free()

	sideHash := tr.create("", testEmail, "side work", when, baseTree, base)

	side, err := tr.native.LookupCommit(sideHash.ToOid())
	require.NoError(tr.t, err)

	defer side.Free()

	return tr.create("HEAD", testEmail, "Merge branch 'side'", when.Add(time.Minute), baseTree, base, side)
}

func TestOpenRepository_Invalid(t *testing.T) {
	t.Parallel()

	_, err := gitlib.OpenRepository(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestRepository_HeadOnEmptyRepo(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)

	repo, err := gitlib.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	_, err = repo.Head()
	require.ErrorIs(t, err, gitlib.ErrEmptyRepository)

	_, err = repo.Log(gitlib.LogOptions{})
	require.ErrorIs(t, err, gitlib.ErrEmptyRepository)
}

func TestRepository_LogOrderAndWindow(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)

	var hashes []gitlib.Hash

	for i := range 4 {
		tr.createFile(testMainFile, strings.Repeat("x\n", i+1))
		hashes = append(hashes, tr.commit(testEmail, "step", testEpoch.AddDate(0, 0, i)))
	}

	repo, err := gitlib.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	collect := func(opts gitlib.LogOptions) []gitlib.Hash {
		iter, logErr := repo.Log(opts)
		require.NoError(t, logErr)

		var got []gitlib.Hash

		require.NoError(t, iter.ForEach(func(c *gitlib.Commit) error {
			got = append(got, c.Hash())

			return nil
		}))

		return got
	}

	assert.Equal(t, []gitlib.Hash{hashes[3], hashes[2], hashes[1], hashes[0]}, collect(gitlib.LogOptions{}))
	assert.Equal(t, []gitlib.Hash{hashes[3], hashes[2]}, collect(gitlib.LogOptions{Limit: 2}))

	since := testEpoch.AddDate(0, 0, 1)
	until := testEpoch.AddDate(0, 0, 2)
	assert.Equal(t, []gitlib.Hash{hashes[2], hashes[1]}, collect(gitlib.LogOptions{Since: &since, Until: &until}))
}

func TestCommitIter_NextAfterExhaustion(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.createFile(testMainFile, testMainV1)
	tr.commit(testEmail, "init", testEpoch)

	repo, err := gitlib.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	iter, err := repo.Log(gitlib.LogOptions{})
	require.NoError(t, err)

	first, err := iter.Next()
	require.NoError(t, err)
	first.Free()

	_, err = iter.Next()
	require.ErrorIs(t, err, io.EOF)

	_, err = iter.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestCollector_Collect(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)

	tr.createFile(testMainFile, testMainV1)
	tr.createFile(testLockFile, "{}\n")
	first := tr.commit(testEmail, "feat: scaffold\n\nlonger body", testEpoch)

	tr.createFile(testMainFile, testMainV2)
	second := tr.commit(testOtherMail, "fix: print greeting", testEpoch.Add(time.Hour))

	tr.createFile(testImageFile, "\x89PNG\x00\x00\x01binary")
	third := tr.commit(testEmail, "add logo", testEpoch.Add(2*time.Hour))

	collector := &gitlib.Collector{Path: tr.path, Options: gitlib.CollectOptions{Workers: 2}}

	snap, err := collector.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Commits, 3)

	assert.Equal(t, third.String(), snap.Commits[0].Hash)
	assert.Equal(t, second.String(), snap.Commits[1].Hash)
	assert.Equal(t, first.String(), snap.Commits[2].Hash)
	assert.Equal(t, "feat: scaffold", snap.Commits[2].Subject)
	assert.Equal(t, "other@example.com", snap.Commits[1].Identity())

	rootStats := snap.StatsFor(first.String())
	assert.Equal(t, 2, rootStats.FilesChanged)
	assert.Equal(t, 5, rootStats.Insertions)
	assert.Zero(t, rootStats.Deletions)

	rootChanges := snap.ChangesFor(first.String())
	require.Len(t, rootChanges, 1)
	assert.Equal(t, testMainFile, rootChanges[0].Path)
	assert.Equal(t, history.ChangeAdded, rootChanges[0].Type)
	assert.Contains(t, rootChanges[0].Diff, "+++ b/main.go\n")
	assert.Contains(t, rootChanges[0].Diff, "+func main() {\n")

	modChanges := snap.ChangesFor(second.String())
	require.Len(t, modChanges, 1)
	assert.Equal(t, history.ChangeModified, modChanges[0].Type)
	assert.Contains(t, modChanges[0].Diff, "+\tfmt.Println(\"hi\")\n")

	binChanges := snap.ChangesFor(third.String())
	require.Len(t, binChanges, 1)
	assert.Equal(t, ".png", binChanges[0].Ext)
	assert.Empty(t, binChanges[0].Diff)

	stats := collector.Stats()
	assert.Equal(t, 3, stats.Commits)
	assert.Equal(t, 3, stats.WithDetail)
	assert.Positive(t, stats.BlobCacheHits+stats.BlobCacheMisses)
}

func TestCollector_MergeCommitHasNoDetail(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.createFile(testMainFile, testMainV1)
	tr.commit(testEmail, "init", testEpoch)

	mergeHash := tr.merge(testEpoch.Add(time.Hour))

	snap, err := (&gitlib.Collector{Path: tr.path}).Collect(context.Background())
	require.NoError(t, err)

	var merge history.Commit

	for _, c := range snap.Commits {
		if c.Hash == mergeHash.String() {
			merge = c
		}
	}

	require.Equal(t, mergeHash.String(), merge.Hash)
	assert.True(t, merge.IsMerge)

	_, hasStats := snap.Stats[merge.Hash]
	assert.False(t, hasStats)
	assert.Nil(t, snap.ChangesFor(merge.Hash))
}

func TestCollector_IgnoreFlags(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.createFile(testMainFile, testMainV1)
	tr.commit(testEmail, "init", testEpoch)
	tr.createFile(testMainFile, testMainV2)
	tr.commit(testEmail, `Revert "init"`, testEpoch.Add(time.Hour))
	tr.merge(testEpoch.Add(2 * time.Hour))

	collector := &gitlib.Collector{
		Path:    tr.path,
		Options: gitlib.CollectOptions{IgnoreReverts: true, IgnoreMerges: true},
	}

	snap, err := collector.Collect(context.Background())
	require.NoError(t, err)

	subjects := make([]string, 0, len(snap.Commits))
	for _, c := range snap.Commits {
		subjects = append(subjects, c.Subject)
	}

	assert.ElementsMatch(t, []string{"init", "side work"}, subjects)
}

func TestCollector_Canceled(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.createFile(testMainFile, testMainV1)
	tr.commit(testEmail, "init", testEpoch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&gitlib.Collector{Path: tr.path}).Collect(ctx)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestCollector_NotARepository(t *testing.T) {
	t.Parallel()

	_, err := (&gitlib.Collector{Path: t.TempDir()}).Collect(context.Background())
	require.Error(t, err)
}
