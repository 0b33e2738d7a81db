package devstats

import (
	"slices"
	"sort"
	"time"

	"github.com/Sumatoshi-tech/devrank/pkg/history"
	"github.com/Sumatoshi-tech/devrank/pkg/mathutil"
)

const day = 24 * time.Hour

// Finalize computes the derived fields. Both commit dates are rendered in
// the zone of the first commit. Calling it again is a no-op.
func (d *DeveloperStats) Finalize() {
	if d.finalized {
		return
	}

	d.finalized = true

	if d.TotalCommits > 0 {
		d.FirstCommitDate = d.FirstCommit.Format(history.DateLayout)
		d.LastCommitDate = d.LastCommit.In(d.FirstCommit.Location()).Format(history.DateLayout)
		d.ActiveDays = max(int(d.LastCommit.Sub(d.FirstCommit)/day)+1, 1)
		d.AverageCommitSize = float64(d.LineVolume()) / float64(d.TotalCommits)
	}

	days := float64(mathutil.FloorOne(d.ActiveDays))
	d.CommitsPerDay = float64(d.TotalCommits) / days
	d.LinesPerDay = float64(d.LineVolume()) / days

	if len(d.CommitSubjects) > MaxSubjects {
		d.CommitSubjects = d.CommitSubjects[:MaxSubjects]
	}

	d.FilesModified = make([]string, 0, len(d.touches))
	for p := range d.touches {
		d.FilesModified = append(d.FilesModified, p)
	}

	slices.Sort(d.FilesModified)

	d.FileTypesModified = make([]string, 0, len(d.fileTypes))
	for ext := range d.fileTypes {
		d.FileTypesModified = append(d.FileTypesModified, ext)
	}

	slices.Sort(d.FileTypesModified)

	d.MostModifiedFiles = topFiles(d.touchOrder, d.touches, TopFilesLimit)
	d.CommitPatterns = AnalyzePatterns(d.CommitSubjects)
	d.ActivePeriods = ActivePeriods(d.commitTimes, PeriodGap)
}

// topFiles orders paths by descending count, ties by first encounter.
func topFiles(order []string, counts map[string]int, limit int) []FileTouch {
	files := make([]FileTouch, 0, len(order))
	for _, p := range order {
		files = append(files, FileTouch{Path: p, Count: counts[p]})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Count > files[j].Count
	})

	if len(files) > limit {
		files = files[:limit]
	}

	return files
}
