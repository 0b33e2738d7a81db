package rating

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Sumatoshi-tech/devrank/pkg/mathutil"
)

const medianQuantile = 0.5

// Summary describes the score distribution of a ranking.
type Summary struct {
	Count  int     `json:"count"  yaml:"count"`
	Mean   float64 `json:"mean"   yaml:"mean"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
	Median float64 `json:"median" yaml:"median"`
	Min    float64 `json:"min"    yaml:"min"`
	Max    float64 `json:"max"    yaml:"max"`
}

// Summarize computes distribution statistics over the scores. The median is
// the empirical 0.5 quantile, so even-sized populations report the lower
// middle score. StdDev is the sample deviation and is 0 below two scores.
func Summarize(r Ranking) Summary {
	if len(r) == 0 {
		return Summary{}
	}

	scores := make([]float64, len(r))
	for i, s := range r {
		scores[i] = s.Score
	}

	slices.Sort(scores)

	sum := Summary{
		Count:  len(scores),
		Mean:   mathutil.Round2(stat.Mean(scores, nil)),
		Median: stat.Quantile(medianQuantile, stat.Empirical, scores, nil),
		Min:    floats.Min(scores),
		Max:    floats.Max(scores),
	}

	if len(scores) > 1 {
		sum.StdDev = mathutil.Round2(stat.StdDev(scores, nil))
	}

	return sum
}
