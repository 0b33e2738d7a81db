package devstats

import (
	"regexp"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/devrank/pkg/mathutil"
)

// Subject length bounds for pattern analysis.
const (
	descriptiveMinLen = 50
	minimalMaxLen     = 10
)

var (
	structuredSubjectRe = regexp.MustCompile(`^(fix|feat|docs|style|refactor|test|chore)(\(.*\))?:`)
	issueReferenceRe    = regexp.MustCompile(`(?i)#\d+|issue-\d+|task-\d+|jira-\d+`)
)

// AnalyzePatterns reports commit message habits as percentages of subjects.
func AnalyzePatterns(subjects []string) CommitPatterns {
	var descriptive, minimal, structured, issues int

	for _, s := range subjects {
		n := utf8.RuneCountInString(s)

		if n > descriptiveMinLen {
			descriptive++
		}

		if n < minimalMaxLen {
			minimal++
		}

		if structuredSubjectRe.MatchString(s) {
			structured++
		}

		if issueReferenceRe.MatchString(s) {
			issues++
		}
	}

	total := len(subjects)

	return CommitPatterns{
		Descriptive:     mathutil.Percent(descriptive, total),
		Minimal:         mathutil.Percent(minimal, total),
		Structured:      mathutil.Percent(structured, total),
		IssueReferences: mathutil.Percent(issues, total),
	}
}
