// Package devstats folds an ordered commit stream into per-developer
// statistics and derives team-level summaries from them.
package devstats

import (
	"time"
)

// MaxSubjects bounds the number of commit subjects kept per developer.
const MaxSubjects = 20

// TopFilesLimit bounds the most-modified files list.
const TopFilesLimit = 10

// File categories.
const (
	CategoryCode   = "code"
	CategoryMarkup = "markup"
	CategoryStyle  = "style"
	CategoryConfig = "config"
	CategoryOther  = "other"
)

// TimeOfDay counts commits by local hour bucket.
type TimeOfDay struct {
	Morning   int `json:"morning"   yaml:"morning"`
	Afternoon int `json:"afternoon" yaml:"afternoon"`
	Evening   int `json:"evening"   yaml:"evening"`
	Night     int `json:"night"     yaml:"night"`
}

// Hour bucket boundaries.
const (
	morningStart   = 6
	afternoonStart = 12
	eveningStart   = 18
	nightStart     = 23
)

func (t *TimeOfDay) add(hour int) {
	switch {
	case hour >= morningStart && hour < afternoonStart:
		t.Morning++
	case hour >= afternoonStart && hour < eveningStart:
		t.Afternoon++
	case hour >= eveningStart && hour < nightStart:
		t.Evening++
	default:
		t.Night++
	}
}

// FileTouch is a file with the number of commits that touched it.
type FileTouch struct {
	Path  string `json:"path"  yaml:"path"`
	Count int    `json:"count" yaml:"count"`
}

// CommitPatterns describes commit message habits as percentages of subjects.
type CommitPatterns struct {
	Descriptive     float64 `json:"descriptive"      yaml:"descriptive"`
	Minimal         float64 `json:"minimal"          yaml:"minimal"`
	Structured      float64 `json:"structured"       yaml:"structured"`
	IssueReferences float64 `json:"issue_references" yaml:"issue_references"`
}

// ActivePeriod is a stretch of commits without a gap longer than the period gap.
type ActivePeriod struct {
	Start   time.Time `json:"start"   yaml:"start"`
	End     time.Time `json:"end"     yaml:"end"`
	Commits int       `json:"commits" yaml:"commits"`
}

// DeveloperStats accumulates the contribution record of one identity.
// Exported list fields are populated by Finalize.
type DeveloperStats struct {
	Identity string `json:"id"    yaml:"id"`
	Name     string `json:"name"  yaml:"name"`
	Email    string `json:"email" yaml:"email"`

	FirstCommit     time.Time `json:"-"                 yaml:"-"`
	LastCommit      time.Time `json:"-"                 yaml:"-"`
	FirstCommitDate string    `json:"first_commit_date" yaml:"first_commit_date"`
	LastCommitDate  string    `json:"last_commit_date"  yaml:"last_commit_date"`
	ActiveDays      int       `json:"active_days"       yaml:"active_days"`

	TotalCommits       int `json:"total_commits"       yaml:"total_commits"`
	SubstantialCommits int `json:"substantial_commits" yaml:"substantial_commits"`
	RevertsCount       int `json:"reverts_count"       yaml:"reverts_count"`
	MergeCount         int `json:"merge_count"         yaml:"merge_count"`
	SquashCount        int `json:"squash_count"        yaml:"squash_count"`

	LinesAdded      int `json:"lines_added"      yaml:"lines_added"`
	LinesRemoved    int `json:"lines_removed"    yaml:"lines_removed"`
	CodeChurn       int `json:"code_churn"       yaml:"code_churn"`
	NetContribution int `json:"net_contribution" yaml:"net_contribution"`
	CommitImpact    int `json:"commit_impact"    yaml:"commit_impact"`

	CommitsPerDay     float64 `json:"commits_per_day"     yaml:"commits_per_day"`
	LinesPerDay       float64 `json:"lines_per_day"       yaml:"lines_per_day"`
	AverageCommitSize float64 `json:"average_commit_size" yaml:"average_commit_size"`

	CommitDistribution map[string]int `json:"commit_distribution" yaml:"commit_distribution"`
	TimeOfDay          TimeOfDay      `json:"time_of_day"         yaml:"time_of_day"`
	FileCategories     map[string]int `json:"file_categories"     yaml:"file_categories"`

	CommitSubjects    []string       `json:"commit_subjects"     yaml:"commit_subjects"`
	FilesModified     []string       `json:"files_modified"      yaml:"files_modified"`
	FileTypesModified []string       `json:"file_types_modified" yaml:"file_types_modified"`
	MostModifiedFiles []FileTouch    `json:"most_modified_files" yaml:"most_modified_files"`
	CommitPatterns    CommitPatterns `json:"commit_patterns"     yaml:"commit_patterns"`
	ActivePeriods     []ActivePeriod `json:"active_periods"      yaml:"active_periods"`

	touches     map[string]int
	touchOrder  []string
	fileTypes   map[string]struct{}
	commitTimes []time.Time
	finalized   bool
}

func newDeveloperStats(identity string) *DeveloperStats {
	return &DeveloperStats{
		Identity:           identity,
		CommitDistribution: make(map[string]int),
		FileCategories:     make(map[string]int),
		touches:            make(map[string]int),
		fileTypes:          make(map[string]struct{}),
	}
}

// LineVolume returns lines added plus lines removed.
func (d *DeveloperStats) LineVolume() int {
	return d.LinesAdded + d.LinesRemoved
}

// Finalized reports whether derived fields have been computed.
func (d *DeveloperStats) Finalized() bool {
	return d.finalized
}

// Result maps identity to finalized developer statistics.
type Result map[string]*DeveloperStats
