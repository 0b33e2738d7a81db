package rating

import (
	"context"
	"log/slog"
	"sort"

	"github.com/Sumatoshi-tech/devrank/pkg/devstats"
	"github.com/Sumatoshi-tech/devrank/pkg/mathutil"
)

const percentScale = 100

// Score is the usefulness rating of one developer.
type Score struct {
	Identity           string             `json:"id"                  yaml:"id"`
	Name               string             `json:"name"                yaml:"name"`
	Score              float64            `json:"score"               yaml:"score"`
	Factors            map[string]float64 `json:"factors"             yaml:"factors"`
	Raw                map[string]float64 `json:"-"                   yaml:"-"`
	FactorDescriptions map[string]string  `json:"factor_descriptions" yaml:"factor_descriptions"`
}

// Ranking is ordered by descending score.
type Ranking []Score

// Identities returns the identities in rank order.
func (r Ranking) Identities() []string {
	ids := make([]string, len(r))
	for i, s := range r {
		ids[i] = s.Identity
	}

	return ids
}

// maxima holds the population-wide denominators.
type maxima struct {
	substantial float64
	lines       float64
	impact      float64
	activeDays  float64
}

func populationMaxima(stats devstats.Result) maxima {
	var m maxima

	for _, dev := range stats {
		m.substantial = max(m.substantial, float64(dev.SubstantialCommits))
		m.lines = max(m.lines, float64(dev.LineVolume()))
		m.impact = max(m.impact, float64(dev.CommitImpact))
		m.activeDays = max(m.activeDays, float64(dev.ActiveDays))
	}

	m.substantial = mathutil.FloorOne(m.substantial)
	m.lines = mathutil.FloorOne(m.lines)
	m.impact = mathutil.FloorOne(m.impact)
	m.activeDays = mathutil.FloorOne(m.activeDays)

	return m
}

// factorValues returns the normalized factor values keyed by factor name.
func factorValues(dev *devstats.DeveloperStats, m maxima) map[string]float64 {
	total := float64(dev.TotalCommits)
	ownDays := float64(mathutil.FloorOne(dev.ActiveDays))

	return map[string]float64{
		FactorSubstantialCommits: float64(dev.SubstantialCommits) / m.substantial,
		FactorLines:              float64(dev.LineVolume()) / m.lines,
		FactorImpact:             float64(dev.CommitImpact) / m.impact,
		FactorSubstantiveRatio:   mathutil.Ratio(float64(dev.SubstantialCommits), total),
		FactorRevertPenalty:      mathutil.Ratio(float64(dev.RevertsCount), total),
		// Algebraically total/max_days; kept in this form to match published scores.
		FactorDailyActivity: (total / ownDays) / (m.activeDays / ownDays),
		FactorMergePenalty:  mathutil.Ratio(float64(dev.MergeCount), total),
	}
}

// Rate scores every developer against the population.
func Rate(stats devstats.Result, weights Weights) Ranking {
	return RateContext(context.Background(), stats, weights, nil)
}

// RateContext is Rate with factor breakdowns logged at debug level.
func RateContext(ctx context.Context, stats devstats.Result, weights Weights, logger *slog.Logger) Ranking {
	if len(stats) == 0 {
		return Ranking{}
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := populationMaxima(stats)
	descriptions := FactorDescriptions()
	ranking := make(Ranking, 0, len(stats))

	for _, id := range stats.Identities() {
		dev := stats[id]
		values := factorValues(dev, m)

		score := Score{
			Identity:           id,
			Name:               dev.Name,
			Factors:            make(map[string]float64, len(Factors)),
			Raw:                make(map[string]float64, len(Factors)),
			FactorDescriptions: descriptions,
		}

		sum := 0.0

		for _, f := range Factors {
			contribution := values[f.Name] * weights[f.Name]
			sum += contribution
			score.Raw[f.Name] = contribution
			score.Factors[f.OutputKey] = mathutil.Round2(values[f.Name] * percentScale)
		}

		score.Score = mathutil.Round2(sum * percentScale)

		logger.DebugContext(ctx, "rated developer",
			"identity", id,
			"score", score.Score,
			"factors", score.Factors,
		)

		ranking = append(ranking, score)
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})

	return ranking
}
