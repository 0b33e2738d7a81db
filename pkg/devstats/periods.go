package devstats

import (
	"slices"
	"time"
)

// PeriodGap is the largest gap between commits inside one active period.
const PeriodGap = 30 * day

// ActivePeriods splits sorted commit times wherever consecutive commits are
// more than gap apart.
func ActivePeriods(times []time.Time, gap time.Duration) []ActivePeriod {
	if len(times) == 0 {
		return nil
	}

	sorted := slices.Clone(times)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })

	periods := []ActivePeriod{{Start: sorted[0], End: sorted[0], Commits: 1}}

	for _, t := range sorted[1:] {
		cur := &periods[len(periods)-1]

		if t.Sub(cur.End) > gap {
			periods = append(periods, ActivePeriod{Start: t, End: t, Commits: 1})

			continue
		}

		cur.End = t
		cur.Commits++
	}

	return periods
}
