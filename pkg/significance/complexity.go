package significance

import "regexp"

// Complexity weight bounds.
const (
	complexityFloor       = 0.5
	complexityCeiling     = 2.0
	complexityBase        = 0.5
	complexityScale       = 10.0
	perAddedLineScore     = 0.1
	perDistinctMatchScore = 0.5
)

// complexityPatterns are structural markers searched in added lines.
var complexityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`if\s+\(.+\)`),
	regexp.MustCompile(`for\s+\(.+\)`),
	regexp.MustCompile(`while\s+\(.+\)`),
	regexp.MustCompile(`switch\s+\(.+\)`),
	regexp.MustCompile(`case\s+.+:`),
	regexp.MustCompile(`try\s*\{`),
	regexp.MustCompile(`catch\s*\(.+\)`),
	regexp.MustCompile(`function\s+\w+`),
	regexp.MustCompile(`def\s+\w+`),
	regexp.MustCompile(`class\s+\w+`),
	regexp.MustCompile(`import\s+.+`),
	regexp.MustCompile(`@\w+`),
	regexp.MustCompile(`\s*return\s+.+`),
	regexp.MustCompile(`async\s+`),
	regexp.MustCompile(`await\s+`),
	regexp.MustCompile(`\w+\.\w+\(.+\)`),
}

// ComplexityWeight scores added lines (markers stripped) into [0.5, 2.0].
func ComplexityWeight(added []string) float64 {
	matched := make([]bool, len(complexityPatterns))
	distinct := 0

	for _, line := range added {
		for i, re := range complexityPatterns {
			if matched[i] || !re.MatchString(line) {
				continue
			}

			matched[i] = true
			distinct++
		}
	}

	score := perAddedLineScore*float64(len(added)) + perDistinctMatchScore*float64(distinct)

	return max(complexityFloor, min(complexityCeiling, complexityBase+score/complexityScale))
}
