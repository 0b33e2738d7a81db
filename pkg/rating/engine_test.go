package rating_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/devrank/pkg/devstats"
	"github.com/Sumatoshi-tech/devrank/pkg/rating"
)

// Test constants to avoid magic strings/numbers.
const (
	testDevA  = "a@x.com"
	testDevB  = "b@x.com"
	testDevC  = "c@x.com"
	testDelta = 1e-9
)

func dev(id string, total, substantial, added, removed, impact, reverts, merges, days int) *devstats.DeveloperStats {
	return &devstats.DeveloperStats{
		Identity:           id,
		Name:               "Name " + id,
		TotalCommits:       total,
		SubstantialCommits: substantial,
		LinesAdded:         added,
		LinesRemoved:       removed,
		CommitImpact:       impact,
		RevertsCount:       reverts,
		MergeCount:         merges,
		ActiveDays:         days,
	}
}

func TestRate_SubstantialNormalization(t *testing.T) {
	t.Parallel()

	stats := devstats.Result{
		testDevA: dev(testDevA, 10, 5, 0, 0, 0, 0, 0, 1),
		testDevB: dev(testDevB, 10, 10, 0, 0, 0, 0, 0, 1),
	}

	ranking := rating.Rate(stats, rating.DefaultWeights())
	require.Len(t, ranking, 2)

	byID := map[string]rating.Score{}
	for _, s := range ranking {
		byID[s.Identity] = s
	}

	assert.InDelta(t, 50.0, byID[testDevA].Factors["substantial_commits"], testDelta)
	assert.InDelta(t, 100.0, byID[testDevB].Factors["substantial_commits"], testDelta)
	assert.InDelta(t, 0.5*0.3, byID[testDevA].Raw[rating.FactorSubstantialCommits], testDelta)
}

func TestRate_DefaultWeights(t *testing.T) {
	t.Parallel()

	stats := devstats.Result{
		testDevA: dev(testDevA, 4, 2, 30, 10, 100, 1, 1, 2),
		testDevB: dev(testDevB, 2, 2, 15, 5, 50, 0, 0, 4),
	}

	ranking := rating.Rate(stats, rating.DefaultWeights())
	require.Len(t, ranking, 2)

	assert.Equal(t, []string{testDevA, testDevB}, ranking.Identities())
	assert.InDelta(t, 96.25, ranking[0].Score, testDelta)
	assert.InDelta(t, 80.0, ranking[1].Score, testDelta)

	assert.Equal(t, map[string]float64{
		"substantial_commits": 100,
		"lines_contributed":   100,
		"commit_impact":       100,
		"substantive_ratio":   50,
		"revert_penalty":      25,
		"daily_activity":      100,
		"merge_penalty":       25,
	}, ranking[0].Factors)
	assert.InDelta(t, 50.0, ranking[1].Factors["daily_activity"], testDelta)
	assert.Len(t, ranking[0].FactorDescriptions, len(rating.Factors))
	assert.Equal(t, "Name "+testDevA, ranking[0].Name)
}

func TestRate_EmptyPopulation(t *testing.T) {
	t.Parallel()

	ranking := rating.Rate(devstats.Result{}, rating.DefaultWeights())

	assert.NotNil(t, ranking)
	assert.Empty(t, ranking)
}

func TestRate_AllZeroPopulation(t *testing.T) {
	t.Parallel()

	stats := devstats.Result{
		testDevB: dev(testDevB, 0, 0, 0, 0, 0, 0, 0, 0),
		testDevA: dev(testDevA, 0, 0, 0, 0, 0, 0, 0, 0),
	}

	ranking := rating.Rate(stats, rating.DefaultWeights())
	require.Len(t, ranking, 2)

	for _, s := range ranking {
		assert.Zero(t, s.Score)

		for key, v := range s.Factors {
			assert.False(t, math.IsNaN(v), key)
			assert.False(t, math.IsInf(v, 0), key)
		}
	}

	assert.Equal(t, []string{testDevA, testDevB}, ranking.Identities())
}

func TestRate_TiesKeepIdentityOrder(t *testing.T) {
	t.Parallel()

	stats := devstats.Result{
		testDevC: dev(testDevC, 1, 0, 0, 0, 0, 0, 0, 1),
		testDevA: dev(testDevA, 1, 0, 0, 0, 0, 0, 0, 1),
		testDevB: dev(testDevB, 1, 0, 0, 0, 0, 0, 0, 1),
	}

	ranking := rating.Rate(stats, rating.DefaultWeights())

	assert.Equal(t, []string{testDevA, testDevB, testDevC}, ranking.Identities())
	assert.InDelta(t, 20.0, ranking[0].Score, testDelta)
}

func TestRate_Deterministic(t *testing.T) {
	t.Parallel()

	stats := devstats.Result{
		testDevA: dev(testDevA, 7, 3, 120, 40, 900, 1, 2, 12),
		testDevB: dev(testDevB, 3, 3, 30, 5, 140, 0, 0, 3),
		testDevC: dev(testDevC, 12, 4, 10, 90, 300, 2, 1, 30),
	}

	first := rating.Rate(stats, rating.DefaultWeights())
	second := rating.RateContext(context.Background(), stats, rating.DefaultWeights(), nil)

	assert.Equal(t, first, second)
}

func TestRate_MonotonicInSubstantialCommits(t *testing.T) {
	t.Parallel()

	scoreFor := func(substantial int) float64 {
		stats := devstats.Result{
			testDevA: dev(testDevA, 10, substantial, 10, 0, 10, 0, 0, 5),
			testDevB: dev(testDevB, 10, 10, 10, 0, 10, 0, 0, 5),
		}

		for _, s := range rating.Rate(stats, rating.DefaultWeights()) {
			if s.Identity == testDevA {
				return s.Score
			}
		}

		return math.NaN()
	}

	prev := scoreFor(0)

	for substantial := 1; substantial <= 10; substantial++ {
		cur := scoreFor(substantial)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestRate_CustomWeights(t *testing.T) {
	t.Parallel()

	stats := devstats.Result{
		testDevA: dev(testDevA, 2, 0, 0, 0, 0, 2, 0, 1),
	}

	weights := rating.Weights{rating.FactorRevertPenalty: -1}

	ranking := rating.Rate(stats, weights)
	require.Len(t, ranking, 1)

	assert.InDelta(t, -100.0, ranking[0].Score, testDelta)
}
