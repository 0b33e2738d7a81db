package significance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want float64
	}{
		{"main.go", 1.0},
		{"README.md", 0.5},
		{"deploy/values.YAML", 0.6},
		{"db/schema.sql", 0.9},
		{"unknown.xyz", 1.0},
		{"Makefile", 1.0},
		{"", 1.0},
		{"pkg/parser_test.go", 0.7},
		{"src/test_utils.py", 0.7},
		{"docs/spec/notes.md", 0.5},
		{"web/app.test.js", 0.7},
		{"testing/helpers.go", 0.7},
		{"contest/main.go", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, FileWeight(tt.path), testFloatDelta)
		})
	}
}

func TestIsBinaryPath(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBinaryPath("lib/native.so"))
	assert.True(t, IsBinaryPath("dist/app.7z"))
	assert.False(t, IsBinaryPath("icons/logo.svg"))
	assert.False(t, IsBinaryPath("main.go"))
}

func TestCommitWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		message string
		want    float64
	}{
		{"", 1.0},
		{"fix: null pointer", 1.2},
		{"feat(api): add endpoint", 1.1},
		{"chore(deps-dev): bump", 0.5},
		{"Docs: typo", 0.7},
		{"update docs and fix hotfix path", 1.3},
		{"wip", 1.0},
		{"release: v1 with a fix", 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, CommitWeight(tt.message), testFloatDelta)
		})
	}
}

func TestComplexityWeight(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.5, ComplexityWeight(nil), testFloatDelta)
	assert.InDelta(t, 0.6, ComplexityWeight(plainLines(10)), testFloatDelta)

	// def + return + method call: 0.2 + 1.5 = 1.7 -> 0.67.
	lines := []string{"def run(self):", "    return self.client.get(url)"}
	assert.InDelta(t, 0.67, ComplexityWeight(lines), testFloatDelta)

	many := plainLines(300)
	assert.InDelta(t, 2.0, ComplexityWeight(many), testFloatDelta)
}
