package devstats

import (
	"context"
	"hash/fnv"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/devrank/pkg/history"
	"github.com/Sumatoshi-tech/devrank/pkg/safeconv"
)

// ShardedResult is the outcome of a sharded fold.
type ShardedResult struct {
	Developers          Result
	UnmatchedExclusions []string
}

// AggregateSharded partitions commits by identity and folds each partition
// concurrently. The output equals Aggregate on the same input.
func AggregateSharded(
	ctx context.Context, snap *history.Snapshot, cfg Config, shards int, opts ...AggregatorOption,
) (Result, error) {
	res, err := aggregateShards(ctx, snap, cfg, shards, opts...)
	if err != nil {
		return nil, err
	}

	return res.Developers, nil
}

// AggregateWithExclusions is AggregateSharded that also reports exclusions
// matching no identity in the history.
func AggregateWithExclusions(
	ctx context.Context, snap *history.Snapshot, cfg Config, shards int, opts ...AggregatorOption,
) (ShardedResult, error) {
	return aggregateShards(ctx, snap, cfg, shards, opts...)
}

func aggregateShards(
	ctx context.Context, snap *history.Snapshot, cfg Config, shards int, opts ...AggregatorOption,
) (ShardedResult, error) {
	if snap == nil {
		snap = history.NewSnapshot()
	}

	shards = max(shards, 1)
	parts := partition(snap.Commits, shards)
	aggs := make([]*Aggregator, shards)
	results := make([]Result, shards)

	g, gctx := errgroup.WithContext(ctx)

	for i := range shards {
		aggs[i] = NewAggregator(snap, cfg)

		g.Go(func() error {
			for _, c := range parts[i] {
				if err := gctx.Err(); err != nil {
					return err
				}

				aggs[i].Add(c)
			}

			results[i] = aggs[i].Result()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ShardedResult{}, err
	}

	out := make(Result)
	seen := make(map[string]struct{})

	for i, part := range results {
		maps.Copy(out, part)
		maps.Copy(seen, aggs[i].seen)
	}

	// Exclusions are checked against the union of all shards.
	merged := NewAggregator(snap, cfg, opts...)
	merged.seen = seen

	return ShardedResult{Developers: out, UnmatchedExclusions: merged.UnmatchedExclusions()}, nil
}

// partition keeps per-identity order within each shard.
func partition(commits []history.Commit, shards int) [][]history.Commit {
	parts := make([][]history.Commit, shards)

	for _, c := range commits {
		idx := shardIndex(c.Identity(), shards)
		parts[idx] = append(parts[idx], c)
	}

	return parts
}

func shardIndex(identity string, shards int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))

	return int(h.Sum32() % safeconv.MustIntToUint32(shards))
}

// Identities returns the population identities in ascending order.
func (r Result) Identities() []string {
	return slices.Sorted(maps.Keys(r))
}
