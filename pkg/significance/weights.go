package significance

import (
	"path"
	"regexp"
	"strings"
)

// Default threshold values.
const (
	DefaultMinChangeThreshold = 5
	defaultWeight             = 1.0
	testFileWeightCap         = 0.7
)

// fileWeights maps lower-cased extensions to their base weight.
var fileWeights = map[string]float64{
	".py": 1.0, ".java": 1.0, ".js": 1.0, ".ts": 1.0, ".cpp": 1.0,
	".c": 1.0, ".cs": 1.0, ".go": 1.0, ".rs": 1.0,

	".json": 0.6, ".yml": 0.6, ".yaml": 0.6, ".toml": 0.6, ".ini": 0.6, ".config": 0.6,

	".md": 0.5, ".rst": 0.5, ".txt": 0.5, ".docs": 0.5,

	".css": 0.8, ".scss": 0.8, ".sass": 0.8, ".less": 0.8, ".html": 0.8,
	".xml": 0.7,

	".svg": 0.4, ".png": 0.3, ".jpg": 0.3, ".jpeg": 0.3, ".gif": 0.3,

	".csv": 0.5,
	".sql": 0.9,
}

// testNameMarkers flag test files by basename.
var testNameMarkers = []string{"test_", "_test", ".test", "spec_", "_spec"}

// testDirNames flag test files by any path segment.
var testDirNames = map[string]struct{}{
	"test": {}, "tests": {}, "testing": {}, "spec": {}, "specs": {},
}

// binaryExtensions are never analyzed for substance.
var binaryExtensions = map[string]struct{}{
	".bin": {}, ".exe": {}, ".dll": {}, ".so": {}, ".pyc": {}, ".jar": {}, ".war": {},
	".class": {}, ".o": {}, ".obj": {}, ".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {},
	".bmp": {}, ".ico": {}, ".pdf": {}, ".doc": {}, ".docx": {}, ".ppt": {}, ".pptx": {},
	".xls": {}, ".xlsx": {}, ".zip": {}, ".tar": {}, ".gz": {}, ".rar": {}, ".7z": {},
}

// commitTypeWeights scales changes by the kind of work a message announces.
var commitTypeWeights = map[string]float64{
	"fix":      1.2,
	"bug":      1.2,
	"hotfix":   1.3,
	"feat":     1.1,
	"feature":  1.1,
	"refactor": 1.0,
	"perf":     1.2,
	"test":     0.8,
	"docs":     0.7,
	"style":    0.6,
	"chore":    0.5,
}

var conventionalCommitRe = regexp.MustCompile(`^(\w+)(\([\w-]+\))?:`)

// IsBinaryPath reports whether the extension of filePath marks a binary file.
func IsBinaryPath(filePath string) bool {
	_, ok := binaryExtensions[strings.ToLower(path.Ext(filePath))]

	return ok
}

// FileWeight returns the weight of a file by extension, capped for test files.
func FileWeight(filePath string) float64 {
	if filePath == "" {
		return defaultWeight
	}

	weight := defaultWeight
	if w, ok := fileWeights[strings.ToLower(path.Ext(filePath))]; ok {
		weight = w
	}

	if isTestPath(filePath) {
		weight = min(weight, testFileWeightCap)
	}

	return weight
}

func isTestPath(filePath string) bool {
	lower := strings.ToLower(filePath)
	base := path.Base(lower)

	for _, marker := range testNameMarkers {
		if strings.Contains(base, marker) {
			return true
		}
	}

	for segment := range strings.SplitSeq(lower, "/") {
		if _, ok := testDirNames[segment]; ok {
			return true
		}
	}

	return false
}

// CommitWeight returns the multiplier announced by a commit message.
// A conventional-commit type wins; otherwise the strongest keyword found anywhere.
func CommitWeight(message string) float64 {
	if message == "" {
		return defaultWeight
	}

	lower := strings.ToLower(message)

	if m := conventionalCommitRe.FindStringSubmatch(lower); m != nil {
		if w, ok := commitTypeWeights[m[1]]; ok {
			return w
		}
	}

	weight := defaultWeight

	for keyword, w := range commitTypeWeights {
		if strings.Contains(lower, keyword) {
			weight = max(weight, w)
		}
	}

	return weight
}
