package gitlib

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/devrank/pkg/history"
)

// DefaultWorkers is the detail extraction parallelism when none is set.
const DefaultWorkers = 4

// DefaultBlobCacheSize is the per-worker blob cache budget in bytes.
const DefaultBlobCacheSize = 64 << 20

// CollectOptions configures history collection.
type CollectOptions struct {
	Since         *time.Time
	Until         *time.Time
	FirstParent   bool
	Limit         int
	Workers       int
	IgnoreReverts bool
	IgnoreMerges  bool
	IgnoredFiles  []string
	BlobCacheSize int64 // Bytes per worker; 0 selects the default, negative disables.
	SkipVendor    bool
}

// CollectStats describes the last Collect call.
type CollectStats struct {
	Commits         int
	WithDetail      int
	BlobCacheHits   int64
	BlobCacheMisses int64
}

// Collector reads a repository into a history snapshot. It implements
// history.Source.
type Collector struct {
	Path    string
	Options CollectOptions
	Logger  *slog.Logger

	stats CollectStats
}

// Stats returns counters from the most recent Collect.
func (c *Collector) Stats() CollectStats {
	return c.stats
}

var _ history.Source = (*Collector)(nil)

// Collect walks HEAD newest first, then extracts per-commit details across
// the configured workers. The snapshot keeps walk order.
func (c *Collector) Collect(ctx context.Context) (*history.Snapshot, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c.stats = CollectStats{}

	commits, hashes, err := c.walk(ctx)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "walked history", "repository", c.Path, "commits", len(commits))

	details, err := c.extract(ctx, hashes)
	if err != nil {
		return nil, err
	}

	snap := history.NewSnapshot()
	snap.Commits = commits

	for i, commit := range commits {
		if !details[i].HasData {
			continue
		}

		snap.Stats[commit.Hash] = details[i].Stats
		snap.Changes[commit.Hash] = details[i].Changes
	}

	c.stats.Commits = len(snap.Commits)
	c.stats.WithDetail = len(snap.Stats)

	logger.InfoContext(ctx, "collected commit details",
		"commits_with_details", len(snap.Stats),
		"file_changes", snap.FileChangeCount(),
	)

	return snap, nil
}

// walk reads commit metadata on the calling goroutine.
func (c *Collector) walk(ctx context.Context) ([]history.Commit, []Hash, error) {
	repo, err := OpenRepository(c.Path)
	if err != nil {
		return nil, nil, err
	}
	defer repo.Free()

	iter, err := repo.Log(LogOptions{
		Since:       c.Options.Since,
		Until:       c.Options.Until,
		FirstParent: c.Options.FirstParent,
		Limit:       c.Options.Limit,
	})
	if err != nil {
		return nil, nil, err
	}

	filter := history.Filter{IgnoreReverts: c.Options.IgnoreReverts, IgnoreMerges: c.Options.IgnoreMerges}

	var (
		commits []history.Commit
		hashes  []Hash
	)

	err = iter.ForEach(func(commit *Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		author := commit.Author()
		hash := commit.Hash()
		record := history.NewCommit(hash.String(), author.Name, author.Email, author.When,
			history.SubjectOf(commit.Message()))

		if !filter.Accept(record) {
			return nil
		}

		commits = append(commits, record)
		hashes = append(hashes, hash)

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return commits, hashes, nil
}

// extract fans commit details out to workers.
func (c *Collector) extract(ctx context.Context, hashes []Hash) ([]CommitDetail, error) {
	details := make([]CommitDetail, len(hashes))
	if len(hashes) == 0 {
		return details, nil
	}

	workers := c.Options.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	workers = min(workers, len(hashes))

	jobs := make(chan detailJob, len(hashes))
	for i, h := range hashes {
		jobs <- detailJob{Index: i, Hash: h}
	}

	close(jobs)

	ignored := c.Options.IgnoredFiles
	if ignored == nil {
		ignored = history.DefaultIgnoredFiles
	}

	opts := ChangeOptions{IgnoredFiles: ignored, SkipVendor: c.Options.SkipVendor}

	budget := c.Options.BlobCacheSize
	if budget == 0 {
		budget = DefaultBlobCacheSize
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	pool := make([]*Worker, workers)

	for i := range pool {
		w := NewWorker(c.Path, opts, budget)
		pool[i] = w

		g.Go(func() error {
			return w.Run(gctx, jobs, details)
		})
	}

	err := g.Wait()

	for _, w := range pool {
		c.stats.BlobCacheHits += w.cache.Hits()
		c.stats.BlobCacheMisses += w.cache.Misses()
	}

	if err != nil {
		return nil, err
	}

	return details, nil
}
