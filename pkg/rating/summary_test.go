package rating_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/devrank/pkg/rating"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	got := rating.Summarize(rating.Ranking{{Score: 90}, {Score: 30}, {Score: 60}})

	assert.Equal(t, 3, got.Count)
	assert.InDelta(t, 60.0, got.Mean, testDelta)
	assert.InDelta(t, 60.0, got.Median, testDelta)
	assert.InDelta(t, 30.0, got.StdDev, testDelta)
	assert.InDelta(t, 30.0, got.Min, testDelta)
	assert.InDelta(t, 90.0, got.Max, testDelta)
}

func TestSummarize_SingleScore(t *testing.T) {
	t.Parallel()

	got := rating.Summarize(rating.Ranking{{Score: 42}})

	assert.Zero(t, got.StdDev)
	assert.InDelta(t, 42.0, got.Median, testDelta)
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, rating.Summary{}, rating.Summarize(nil))
}
