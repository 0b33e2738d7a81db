package devstats

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/devrank/pkg/history"
)

// Config controls which identities take part in aggregation.
type Config struct {
	// Exclude lists identities dropped before folding. Matching is case-insensitive.
	Exclude []string
}

// excludeSet returns the normalized exclusion set.
func (c Config) excludeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Exclude))

	for _, id := range c.Exclude {
		norm := history.NormalizeIdentity(id)
		if norm != "" {
			set[norm] = struct{}{}
		}
	}

	return set
}

// Aggregator folds commits into per-identity statistics in arrival order.
type Aggregator struct {
	snap    *history.Snapshot
	exclude map[string]struct{}
	devs    map[string]*DeveloperStats
	seen    map[string]struct{}
	logger  *slog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the logger used for exclusion warnings.
func WithLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAggregator creates an Aggregator reading stats and changes from snap.
func NewAggregator(snap *history.Snapshot, cfg Config, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		snap:    snap,
		exclude: cfg.excludeSet(),
		devs:    make(map[string]*DeveloperStats),
		seen:    make(map[string]struct{}),
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *Aggregator) getOrCreate(identity string) *DeveloperStats {
	dev, ok := a.devs[identity]
	if !ok {
		dev = newDeveloperStats(identity)
		a.devs[identity] = dev
	}

	return dev
}

// Add folds one commit.
func (a *Aggregator) Add(c history.Commit) {
	identity := c.Identity()
	a.seen[identity] = struct{}{}

	if _, skip := a.exclude[identity]; skip {
		return
	}

	dev := a.getOrCreate(identity)
	dev.Name = c.AuthorName
	dev.Email = c.AuthorEmail
	dev.TotalCommits++

	if len(dev.CommitSubjects) < MaxSubjects {
		dev.CommitSubjects = append(dev.CommitSubjects, c.Subject)
	}

	if isSquashSubject(c.Subject) {
		dev.SquashCount++
	}

	if c.IsRevert {
		dev.RevertsCount++
	}

	if c.IsMerge {
		dev.MergeCount++
	}

	if dev.TotalCommits == 1 || c.When.Before(dev.FirstCommit) {
		dev.FirstCommit = c.When
	}

	if dev.TotalCommits == 1 || !c.When.Before(dev.LastCommit) {
		dev.LastCommit = c.When
	}

	dev.commitTimes = append(dev.commitTimes, c.When)
	dev.CommitDistribution[c.When.Format(monthLayout)]++
	dev.TimeOfDay.add(c.When.Hour())

	stats := a.snap.StatsFor(c.Hash)
	dev.LinesAdded += stats.Insertions
	dev.LinesRemoved += stats.Deletions
	dev.CodeChurn += stats.Insertions + stats.Deletions
	dev.NetContribution += stats.Insertions - stats.Deletions
	dev.CommitImpact += stats.Impact()

	substantial := false

	for _, fc := range a.snap.ChangesFor(c.Hash) {
		dev.touch(fc.Path)

		if fc.Ext != "" {
			dev.fileTypes[fc.Ext] = struct{}{}
			dev.FileCategories[Categorize(fc.Ext)]++
		}
		substantial = substantial || fc.Substantial
	}

	if substantial {
		dev.SubstantialCommits++
	}
}

// Result finalizes every developer and returns the population.
func (a *Aggregator) Result() Result {
	out := make(Result, len(a.devs))

	for id, dev := range a.devs {
		dev.Finalize()
		out[id] = dev
	}

	return out
}

// UnmatchedExclusions returns excluded identities that never appeared, sorted.
func (a *Aggregator) UnmatchedExclusions() []string {
	var missing []string

	for id := range a.exclude {
		if _, ok := a.seen[id]; !ok {
			missing = append(missing, id)
		}
	}

	slices.Sort(missing)

	for _, id := range missing {
		a.logger.Warn("excluded developer not found in history", "identity", id)
	}

	return missing
}

const monthLayout = "2006-01"

func isSquashSubject(subject string) bool {
	lower := strings.ToLower(subject)

	return strings.Contains(lower, "merge") || strings.Contains(lower, "squash")
}

func (d *DeveloperStats) touch(filePath string) {
	if _, ok := d.touches[filePath]; !ok {
		d.touchOrder = append(d.touchOrder, filePath)
	}

	d.touches[filePath]++
}

// Aggregate folds the whole snapshot in source order and finalizes the result.
func Aggregate(snap *history.Snapshot, cfg Config, opts ...AggregatorOption) Result {
	if snap == nil {
		snap = history.NewSnapshot()
	}

	agg := NewAggregator(snap, cfg, opts...)

	for _, c := range snap.Commits {
		agg.Add(c)
	}

	return agg.Result()
}
