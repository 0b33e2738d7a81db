package devstats

import (
	"maps"
	"slices"

	"github.com/Sumatoshi-tech/devrank/pkg/metrics"
)

// Team metric names.
const (
	MetricTotals        = "team_totals"
	MetricFiles         = "team_files_modified"
	MetricFileTypes     = "team_file_types"
	MetricDistribution  = "team_commit_distribution"
	MetricMostActive    = "most_active_developer"
	MetricMostImpactful = "most_impactful_developer"
	MetricMostProlific  = "most_prolific_developer"
	MetricAvgImpact     = "average_commit_impact"
)

// Totals sums the per-developer counters.
type Totals struct {
	Developers         int `json:"developers"                yaml:"developers"`
	Commits            int `json:"total_commits"             yaml:"total_commits"`
	SubstantialCommits int `json:"total_substantial_commits" yaml:"total_substantial_commits"`
	LinesAdded         int `json:"total_lines_added"         yaml:"total_lines_added"`
	LinesRemoved       int `json:"total_lines_removed"       yaml:"total_lines_removed"`
	Impact             int `json:"total_impact"              yaml:"total_impact"`
}

// Leader names the developer with the highest value of one counter.
type Leader struct {
	Identity string `json:"id"    yaml:"id"`
	Name     string `json:"name"  yaml:"name"`
	Value    int    `json:"value" yaml:"value"`
}

// TeamStats summarizes a developer population.
type TeamStats struct {
	Totals              Totals         `json:"totals"                   yaml:"totals"`
	FilesModified       []string       `json:"total_files_modified"     yaml:"total_files_modified"`
	FileTypes           []string       `json:"total_file_types"         yaml:"total_file_types"`
	CommitDistribution  map[string]int `json:"commit_distribution"      yaml:"commit_distribution"`
	MostActive          *Leader        `json:"most_active_developer"    yaml:"most_active_developer"`
	MostImpactful       *Leader        `json:"most_impactful_developer" yaml:"most_impactful_developer"`
	MostProlific        *Leader        `json:"most_prolific_developer"  yaml:"most_prolific_developer"`
	AverageCommitImpact float64        `json:"average_commit_impact"    yaml:"average_commit_impact"`
	Metrics             []metrics.Info `json:"metrics"                  yaml:"metrics"`
}

// --- Metric implementations ---.

// TotalsMetric sums counters across the population.
type TotalsMetric struct{ metrics.MetricMeta }

// Compute implements metrics.Metric.
func (TotalsMetric) Compute(r Result) Totals {
	var t Totals

	for _, dev := range r {
		t.Developers++
		t.Commits += dev.TotalCommits
		t.SubstantialCommits += dev.SubstantialCommits
		t.LinesAdded += dev.LinesAdded
		t.LinesRemoved += dev.LinesRemoved
		t.Impact += dev.CommitImpact
	}

	return t
}

// UnionMetric collects the sorted union of a per-developer list.
type UnionMetric struct {
	metrics.MetricMeta

	field func(*DeveloperStats) []string
}

// Compute implements metrics.Metric.
func (m UnionMetric) Compute(r Result) []string {
	set := make(map[string]struct{})

	for _, dev := range r {
		for _, v := range m.field(dev) {
			set[v] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(set))
}

// DistributionMetric merges monthly commit counts.
type DistributionMetric struct{ metrics.MetricMeta }

// Compute implements metrics.Metric.
func (DistributionMetric) Compute(r Result) map[string]int {
	out := make(map[string]int)

	for _, dev := range r {
		for month, n := range dev.CommitDistribution {
			out[month] += n
		}
	}

	return out
}

// LeaderMetric picks the developer with the strictly greatest counter.
// Ties keep the first identity in ascending order; an all-zero population has no leader.
type LeaderMetric struct {
	metrics.MetricMeta

	value func(*DeveloperStats) int
}

// Compute implements metrics.Metric.
func (m LeaderMetric) Compute(r Result) *Leader {
	var (
		best *Leader
		top  int
	)

	for _, id := range r.Identities() {
		dev := r[id]

		if v := m.value(dev); v > top {
			top = v
			best = &Leader{Identity: id, Name: dev.Name, Value: v}
		}
	}

	return best
}

// AverageImpactMetric divides total impact by total commits.
type AverageImpactMetric struct{ metrics.MetricMeta }

// Compute implements metrics.Metric.
func (AverageImpactMetric) Compute(r Result) float64 {
	t := TotalsMetric{}.Compute(r)
	if t.Commits == 0 {
		return 0
	}

	return float64(t.Impact) / float64(t.Commits)
}

// NewTeamRegistry registers every team metric.
func NewTeamRegistry() *metrics.Registry {
	reg := metrics.NewRegistry()

	metrics.Register[Result, Totals](reg, TotalsMetric{metrics.MetricMeta{
		MetricName:        MetricTotals,
		MetricDisplayName: "Team Totals",
		MetricDescription: "Commits, substantial commits and line counts summed over all developers.",
		MetricType:        metrics.TypeAggregate,
	}})
	metrics.Register[Result, []string](reg, UnionMetric{
		MetricMeta: metrics.MetricMeta{
			MetricName:        MetricFiles,
			MetricDisplayName: "Files Modified",
			MetricDescription: "Every path touched by at least one developer.",
			MetricType:        metrics.TypeAggregate,
		},
		field: func(d *DeveloperStats) []string { return d.FilesModified },
	})
	metrics.Register[Result, []string](reg, UnionMetric{
		MetricMeta: metrics.MetricMeta{
			MetricName:        MetricFileTypes,
			MetricDisplayName: "File Types",
			MetricDescription: "Every file extension touched by at least one developer.",
			MetricType:        metrics.TypeAggregate,
		},
		field: func(d *DeveloperStats) []string { return d.FileTypesModified },
	})
	metrics.Register[Result, map[string]int](reg, DistributionMetric{metrics.MetricMeta{
		MetricName:        MetricDistribution,
		MetricDisplayName: "Commit Distribution",
		MetricDescription: "Commits per calendar month across the team.",
		MetricType:        metrics.TypeAggregate,
	}})
	metrics.Register[Result, *Leader](reg, LeaderMetric{
		MetricMeta: metrics.MetricMeta{
			MetricName:        MetricMostActive,
			MetricDisplayName: "Most Active Developer",
			MetricDescription: "Developer with the most commits.",
			MetricType:        metrics.TypeLeader,
		},
		value: func(d *DeveloperStats) int { return d.TotalCommits },
	})
	metrics.Register[Result, *Leader](reg, LeaderMetric{
		MetricMeta: metrics.MetricMeta{
			MetricName:        MetricMostImpactful,
			MetricDisplayName: "Most Impactful Developer",
			MetricDescription: "Developer with the highest summed commit impact.",
			MetricType:        metrics.TypeLeader,
		},
		value: func(d *DeveloperStats) int { return d.CommitImpact },
	})
	metrics.Register[Result, *Leader](reg, LeaderMetric{
		MetricMeta: metrics.MetricMeta{
			MetricName:        MetricMostProlific,
			MetricDisplayName: "Most Prolific Developer",
			MetricDescription: "Developer with the most lines added.",
			MetricType:        metrics.TypeLeader,
		},
		value: func(d *DeveloperStats) int { return d.LinesAdded },
	})
	metrics.Register[Result, float64](reg, AverageImpactMetric{metrics.MetricMeta{
		MetricName:        MetricAvgImpact,
		MetricDisplayName: "Average Commit Impact",
		MetricDescription: "Total impact divided by total commits.",
		MetricType:        metrics.TypeAggregate,
	}})

	return reg
}

// ComputeTeam evaluates the team registry against a finalized population.
func ComputeTeam(r Result) TeamStats {
	reg := NewTeamRegistry()

	return TeamStats{
		Totals:              compute[Totals](reg, MetricTotals, r),
		FilesModified:       compute[[]string](reg, MetricFiles, r),
		FileTypes:           compute[[]string](reg, MetricFileTypes, r),
		CommitDistribution:  compute[map[string]int](reg, MetricDistribution, r),
		MostActive:          compute[*Leader](reg, MetricMostActive, r),
		MostImpactful:       compute[*Leader](reg, MetricMostImpactful, r),
		MostProlific:        compute[*Leader](reg, MetricMostProlific, r),
		AverageCommitImpact: compute[float64](reg, MetricAvgImpact, r),
		Metrics:             reg.Describe(),
	}
}

func compute[Out any](reg *metrics.Registry, name string, r Result) Out {
	m, ok := metrics.Lookup[Result, Out](reg, name)
	if !ok {
		var zero Out

		return zero
	}

	return m.Compute(r)
}
