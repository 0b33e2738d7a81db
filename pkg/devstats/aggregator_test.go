package devstats_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/devrank/pkg/devstats"
	"github.com/Sumatoshi-tech/devrank/pkg/history"
)

// Test constants to avoid magic strings/numbers.
const (
	testIdentity   = "dev@x.com"
	testOther      = "other@x.com"
	testGhost      = "ghost@x.com"
	testFileGo     = "src/main.go"
	testFileMd     = "README.md"
	testFileMake   = "Makefile"
	testFileDocker = "Dockerfile"
	testShards     = 4
)

var testBase = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

type snapBuilder struct {
	snap *history.Snapshot
	n    int
}

func newSnapBuilder() *snapBuilder {
	return &snapBuilder{snap: history.NewSnapshot()}
}

func (b *snapBuilder) commit(email string, when time.Time, subject string) string {
	b.n++
	hash := fmt.Sprintf("c%03d", b.n)
	b.snap.Commits = append(b.snap.Commits, history.NewCommit(hash, "Name "+email, email, when, subject))

	return hash
}

func (b *snapBuilder) stats(hash string, files, ins, del int) {
	b.snap.Stats[hash] = history.CommitStats{FilesChanged: files, Insertions: ins, Deletions: del}
}

func (b *snapBuilder) change(hash, path string, substantial bool) {
	fc := history.NewFileChange(hash, path, history.ChangeModified, "")
	fc.Substantial = substantial
	b.snap.Changes[hash] = append(b.snap.Changes[hash], fc)
}

func TestAggregate_CaseInsensitiveIdentity(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()
	b.commit("Dev@x.com", testBase.Add(-time.Hour), "first")
	b.commit("dev@x.com", testBase.Add(5*time.Hour), "second")

	res := devstats.Aggregate(b.snap, devstats.Config{})

	require.Len(t, res, 1)

	dev := res[testIdentity]
	require.NotNil(t, dev)
	assert.Equal(t, 2, dev.TotalCommits)
	assert.Equal(t, "dev@x.com", dev.Email)
	assert.Equal(t, 1, dev.ActiveDays)
	assert.Equal(t, 1, dev.TimeOfDay.Morning)
	assert.Equal(t, 1, dev.TimeOfDay.Afternoon)
}

func TestAggregate_Counters(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()
	h1 := b.commit(testIdentity, testBase, "feat: parser")
	b.stats(h1, 2, 10, 4)
	b.change(h1, testFileGo, true)
	b.change(h1, testFileMd, false)

	h2 := b.commit(testIdentity, testBase.Add(47*time.Hour), "tweak")
	b.change(h2, testFileGo, false)

	dev := devstats.Aggregate(b.snap, devstats.Config{})[testIdentity]
	require.NotNil(t, dev)

	assert.Equal(t, 2, dev.TotalCommits)
	assert.Equal(t, 1, dev.SubstantialCommits)
	assert.Equal(t, 10, dev.LinesAdded)
	assert.Equal(t, 4, dev.LinesRemoved)
	assert.Equal(t, 14, dev.CodeChurn)
	assert.Equal(t, 6, dev.NetContribution)
	assert.Equal(t, 28, dev.CommitImpact)
	assert.Equal(t, 2, dev.ActiveDays)
	assert.InDelta(t, 1.0, dev.CommitsPerDay, 1e-9)
	assert.InDelta(t, 7.0, dev.LinesPerDay, 1e-9)
	assert.InDelta(t, 7.0, dev.AverageCommitSize, 1e-9)
	assert.Equal(t, []string{testFileMd, testFileGo}, dev.FilesModified)
	assert.Equal(t, []string{".go", ".md"}, dev.FileTypesModified)
	assert.Equal(t, map[string]int{devstats.CategoryCode: 2, devstats.CategoryMarkup: 1}, dev.FileCategories)
	assert.Equal(t, map[string]int{"2024-01": 2}, dev.CommitDistribution)
	assert.Equal(t, []devstats.FileTouch{{Path: testFileGo, Count: 2}, {Path: testFileMd, Count: 1}}, dev.MostModifiedFiles)
	assert.Equal(t, "2024-01-01 10:00:00", dev.FirstCommitDate)
	assert.Equal(t, "2024-01-03 09:00:00", dev.LastCommitDate)
}

func TestAggregate_MissingDataCountsCommitOnly(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()
	b.commit(testIdentity, testBase, "no details")

	dev := devstats.Aggregate(b.snap, devstats.Config{})[testIdentity]
	require.NotNil(t, dev)

	assert.Equal(t, 1, dev.TotalCommits)
	assert.Zero(t, dev.SubstantialCommits)
	assert.Zero(t, dev.CodeChurn)
	assert.Zero(t, dev.CommitImpact)
	assert.Empty(t, dev.FilesModified)
	assert.Equal(t, 1, dev.ActiveDays)
}

func TestAggregate_NilSnapshot(t *testing.T) {
	t.Parallel()

	assert.Empty(t, devstats.Aggregate(nil, devstats.Config{}))
}

func TestAggregate_OutOfOrderDates(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()
	b.commit(testIdentity, testBase.Add(72*time.Hour), "later")
	b.commit(testIdentity, testBase, "earlier")

	dev := devstats.Aggregate(b.snap, devstats.Config{})[testIdentity]
	require.NotNil(t, dev)

	assert.Equal(t, testBase, dev.FirstCommit)
	assert.Equal(t, testBase.Add(72*time.Hour), dev.LastCommit)
	assert.Equal(t, 4, dev.ActiveDays)
}

func TestAggregate_EqualInstantsKeepFirstAndLastSeen(t *testing.T) {
	t.Parallel()

	east := time.FixedZone("east", 5*60*60)
	west := time.FixedZone("west", -3*60*60)

	b := newSnapBuilder()
	b.commit(testIdentity, testBase.In(east), "first seen")
	b.commit(testIdentity, testBase, "middle")
	b.commit(testIdentity, testBase.In(west), "last seen")

	dev := devstats.Aggregate(b.snap, devstats.Config{})[testIdentity]
	require.NotNil(t, dev)

	assert.Equal(t, east, dev.FirstCommit.Location())
	assert.Equal(t, west, dev.LastCommit.Location())
	assert.Equal(t, "2024-01-01 15:00:00", dev.FirstCommitDate)
	assert.Equal(t, "2024-01-01 15:00:00", dev.LastCommitDate)
	assert.Equal(t, 1, dev.ActiveDays)
}

func TestAggregate_DatesRenderedInFirstCommitZone(t *testing.T) {
	t.Parallel()

	east := time.FixedZone("east", 5*60*60)

	b := newSnapBuilder()
	b.commit(testIdentity, testBase.In(east), "morning in the east")
	b.commit(testIdentity, testBase.Add(time.Hour), "an hour later in UTC")

	dev := devstats.Aggregate(b.snap, devstats.Config{})[testIdentity]
	require.NotNil(t, dev)

	assert.Equal(t, "2024-01-01 15:00:00", dev.FirstCommitDate)
	assert.Equal(t, "2024-01-01 16:00:00", dev.LastCommitDate)
	assert.LessOrEqual(t, dev.FirstCommitDate, dev.LastCommitDate)
}

func TestAggregate_ExtensionlessFilesHaveNoCategory(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()
	h := b.commit(testIdentity, testBase, "build: tooling")
	b.change(h, testFileMake, true)
	b.change(h, testFileDocker, false)

	dev := devstats.Aggregate(b.snap, devstats.Config{})[testIdentity]
	require.NotNil(t, dev)

	assert.Empty(t, dev.FileCategories)
	assert.Empty(t, dev.FileTypesModified)
	assert.Equal(t, []string{testFileDocker, testFileMake}, dev.FilesModified)
	assert.Equal(t, 1, dev.SubstantialCommits)
}

func TestAggregate_BoundedSubjects(t *testing.T) {
	t.Parallel()

	const commits = 25

	b := newSnapBuilder()
	for i := range commits {
		b.commit(testIdentity, testBase.Add(time.Duration(i)*time.Minute), fmt.Sprintf("squash %d", i))
	}

	dev := devstats.Aggregate(b.snap, devstats.Config{})[testIdentity]
	require.NotNil(t, dev)

	assert.Len(t, dev.CommitSubjects, devstats.MaxSubjects)
	assert.Equal(t, "squash 0", dev.CommitSubjects[0])
	assert.Equal(t, commits, dev.SquashCount)
}

func TestAggregate_RevertAndMergeCounters(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()
	b.commit(testIdentity, testBase, `Revert "feat: parser"`)
	b.commit(testIdentity, testBase, "Merge branch 'main'")
	b.commit(testIdentity, testBase, "feat: lexer")

	dev := devstats.Aggregate(b.snap, devstats.Config{})[testIdentity]
	require.NotNil(t, dev)

	assert.Equal(t, 1, dev.RevertsCount)
	assert.Equal(t, 1, dev.MergeCount)
	assert.Equal(t, 1, dev.SquashCount)
}

func TestAggregate_TimeOfDayBuckets(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	for _, hour := range []int{5, 6, 11, 12, 17, 18, 22, 23} {
		b.commit(testIdentity, day.Add(time.Duration(hour)*time.Hour), "x")
	}

	dev := devstats.Aggregate(b.snap, devstats.Config{})[testIdentity]
	require.NotNil(t, dev)

	assert.Equal(t, devstats.TimeOfDay{Morning: 2, Afternoon: 2, Evening: 2, Night: 2}, dev.TimeOfDay)
}

func TestAggregate_TopFilesTieBreakByFirstEncounter(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()

	for i := range 12 {
		h := b.commit(testIdentity, testBase, "x")
		b.change(h, fmt.Sprintf("f%02d.go", i), false)
	}

	h := b.commit(testIdentity, testBase, "x")
	b.change(h, "f11.go", false)

	dev := devstats.Aggregate(b.snap, devstats.Config{})[testIdentity]
	require.NotNil(t, dev)
	require.Len(t, dev.MostModifiedFiles, devstats.TopFilesLimit)

	assert.Equal(t, devstats.FileTouch{Path: "f11.go", Count: 2}, dev.MostModifiedFiles[0])
	assert.Equal(t, "f00.go", dev.MostModifiedFiles[1].Path)
	assert.Equal(t, "f08.go", dev.MostModifiedFiles[9].Path)
}

func TestAggregate_FinalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()
	b.commit(testIdentity, testBase, "x")

	dev := devstats.Aggregate(b.snap, devstats.Config{})[testIdentity]
	require.NotNil(t, dev)
	require.True(t, dev.Finalized())

	before := *dev
	dev.Finalize()

	assert.Equal(t, before.ActiveDays, dev.ActiveDays)
	assert.Equal(t, before.CommitsPerDay, dev.CommitsPerDay)
}

func TestAggregator_Exclusions(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()
	b.commit(testIdentity, testBase, "x")
	b.commit(testOther, testBase, "y")

	agg := devstats.NewAggregator(b.snap, devstats.Config{Exclude: []string{"DEV@x.com", testGhost}})
	for _, c := range b.snap.Commits {
		agg.Add(c)
	}

	res := agg.Result()

	assert.Equal(t, []string{testOther}, res.Identities())
	assert.Equal(t, []string{testGhost}, agg.UnmatchedExclusions())
}

func TestAggregateSharded_MatchesSequential(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()

	for i := range 40 {
		email := fmt.Sprintf("dev%d@x.com", i%7)
		h := b.commit(email, testBase.Add(time.Duration(i)*13*time.Hour), fmt.Sprintf("fix: item %d", i))
		b.stats(h, 1+i%3, i, i/2)
		b.change(h, fmt.Sprintf("pkg/f%d.go", i%5), i%2 == 0)
	}

	want := devstats.Aggregate(b.snap, devstats.Config{})

	got, err := devstats.AggregateSharded(context.Background(), b.snap, devstats.Config{}, testShards)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestAggregateWithExclusions_AcrossShards(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()
	b.commit(testIdentity, testBase, "x")
	b.commit(testOther, testBase, "y")

	cfg := devstats.Config{Exclude: []string{testIdentity, testGhost}}

	res, err := devstats.AggregateWithExclusions(context.Background(), b.snap, cfg, testShards)
	require.NoError(t, err)

	assert.Equal(t, []string{testOther}, res.Developers.Identities())
	assert.Equal(t, []string{testGhost}, res.UnmatchedExclusions)
}

func TestAggregateSharded_Canceled(t *testing.T) {
	t.Parallel()

	b := newSnapBuilder()
	b.commit(testIdentity, testBase, "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := devstats.AggregateSharded(ctx, b.snap, devstats.Config{}, testShards)
	require.ErrorIs(t, err, context.Canceled)
}
