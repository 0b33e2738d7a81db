// Package report assembles analysis results into a single document and
// renders it as JSON, YAML, a terminal table or an HTML chart page.
package report

import (
	"maps"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/devrank/pkg/devstats"
	"github.com/Sumatoshi-tech/devrank/pkg/rating"
)

// GeneratedAtLayout renders Metadata.GeneratedAt.
const GeneratedAtLayout = "2006-01-02 15:04:05"

// Metadata describes the run that produced a report.
type Metadata struct {
	GeneratedAt         string   `json:"generated_at"         yaml:"generated_at"`
	Repository          string   `json:"repository"           yaml:"repository"`
	DeveloperCount      int      `json:"developer_count"      yaml:"developer_count"`
	ExcludedDevelopers  []string `json:"excluded_developers"  yaml:"excluded_developers"`
	UnmatchedExclusions []string `json:"unmatched_exclusions" yaml:"unmatched_exclusions"`
	ToolVersion         string   `json:"tool_version"         yaml:"tool_version"`
}

// Report is the complete analysis output.
type Report struct {
	Metadata          Metadata           `json:"metadata"           yaml:"metadata"`
	Developers        devstats.Result    `json:"developers"         yaml:"developers"`
	UsefulnessRating  rating.Ranking     `json:"usefulness_rating"  yaml:"usefulness_rating"`
	WeightsUsed       rating.Weights     `json:"weights_used"       yaml:"weights_used"`
	WeightDiagnostics rating.Diagnostics `json:"weight_diagnostics" yaml:"weight_diagnostics"`
	TeamStats         devstats.TeamStats `json:"team_stats"         yaml:"team_stats"`
	ScoreSummary      rating.Summary     `json:"score_summary"      yaml:"score_summary"`
}

// Input gathers everything Build needs.
type Input struct {
	Repository          string
	ToolVersion         string
	GeneratedAt         time.Time
	Developers          devstats.Result
	ExcludedDevelopers  []string
	UnmatchedExclusions []string
	Ranking             rating.Ranking
	Weights             rating.Weights
	Diagnostics         rating.Diagnostics
	Team                devstats.TeamStats
	Summary             rating.Summary
}

// Build assembles a report. Lists are copied and nil lists become empty so
// the serialized form is stable.
func Build(in Input) *Report {
	developers := in.Developers
	if developers == nil {
		developers = devstats.Result{}
	}

	ranking := in.Ranking
	if ranking == nil {
		ranking = rating.Ranking{}
	}

	generated := in.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	weights := in.Weights.Clone()
	if weights == nil {
		weights = rating.Weights{}
	}

	diag := rating.Diagnostics{Unknown: orEmpty(in.Diagnostics.Unknown)}

	return &Report{
		Metadata: Metadata{
			GeneratedAt:         generated.Format(GeneratedAtLayout),
			Repository:          in.Repository,
			DeveloperCount:      len(developers),
			ExcludedDevelopers:  orEmpty(in.ExcludedDevelopers),
			UnmatchedExclusions: orEmpty(in.UnmatchedExclusions),
			ToolVersion:         in.ToolVersion,
		},
		Developers:        developers,
		UsefulnessRating:  ranking,
		WeightsUsed:       weights,
		WeightDiagnostics: diag,
		TeamStats:         in.Team,
		ScoreSummary:      in.Summary,
	}
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}

	return slices.Clone(items)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
