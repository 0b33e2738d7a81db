package pipeline

import (
	"fmt"

	"github.com/Sumatoshi-tech/devrank/pkg/config"
	"github.com/Sumatoshi-tech/devrank/pkg/devstats"
	"github.com/Sumatoshi-tech/devrank/pkg/gitlib"
	"github.com/Sumatoshi-tech/devrank/pkg/rating"
	"github.com/Sumatoshi-tech/devrank/pkg/significance"
)

// Settings translates loaded configuration into a run config and collector
// options. The weights file, when configured, is read here.
func Settings(c *config.Config, repository string) (Config, gitlib.CollectOptions, error) {
	a := c.Analysis

	since, until, err := a.Window()
	if err != nil {
		return Config{}, gitlib.CollectOptions{}, err
	}

	cacheBytes, err := a.BlobCacheBytes()
	if err != nil {
		return Config{}, gitlib.CollectOptions{}, err
	}

	sources := rating.Sources{Overrides: c.Weights.Overrides}

	if c.Weights.File != "" {
		fileWeights, loadErr := rating.LoadWeightsFile(c.Weights.File)
		if loadErr != nil {
			return Config{}, gitlib.CollectOptions{}, fmt.Errorf("weights file: %w", loadErr)
		}

		sources.File = fileWeights
	}

	run := Config{
		Repository: repository,
		Significance: significance.Config{
			MinChangeThreshold:   a.MinChangeSize,
			IgnoreWhitespaceOnly: a.IgnoreWhitespaceOnly,
		},
		CommitTypeWeighting: a.CommitTypeWeighting,
		Aggregation:         devstats.Config{Exclude: a.ExcludeDevelopers},
		Shards:              a.Workers,
		WeightSources:       sources,
	}

	collect := gitlib.CollectOptions{
		Since:         since,
		Until:         until,
		FirstParent:   a.FirstParent,
		Limit:         a.Limit,
		Workers:       a.Workers,
		IgnoreReverts: a.IgnoreReverts,
		IgnoreMerges:  a.IgnoreMerges,
		IgnoredFiles:  a.IgnoredFiles,
		BlobCacheSize: cacheBytes,
		SkipVendor:    a.SkipVendor,
	}

	if cacheBytes == 0 {
		collect.BlobCacheSize = -1
	}

	return run, collect, nil
}
