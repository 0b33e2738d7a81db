// Package significance decides whether a file-level change is substantial.
//
// A change is substantial when its line delta, scaled by file-type,
// complexity and commit-type multipliers, reaches a configured threshold.
package significance

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"unicode"
)

// Verdict reasons.
const (
	ReasonEmptyDiff      = "empty_diff"
	ReasonBinary         = "binary"
	ReasonWhitespaceOnly = "whitespace_only"
	ReasonBelowThreshold = "below_threshold"
	ReasonWeighted       = "weighted"
)

// Config holds the classifier settings for one run.
type Config struct {
	MinChangeThreshold   int  `json:"min_change_size"        yaml:"min_change_size"`
	IgnoreWhitespaceOnly bool `json:"ignore_whitespace_only" yaml:"ignore_whitespace_only"`
}

// DefaultConfig returns the default classifier settings.
func DefaultConfig() Config {
	return Config{
		MinChangeThreshold:   DefaultMinChangeThreshold,
		IgnoreWhitespaceOnly: true,
	}
}

// Verdict is the full evaluation of one change.
type Verdict struct {
	Substantial      bool    `json:"substantial"`
	Reason           string  `json:"reason"`
	Added            int     `json:"added"`
	Removed          int     `json:"removed"`
	Total            int     `json:"total"`
	FileWeight       float64 `json:"file_weight"`
	ComplexityWeight float64 `json:"complexity_weight"`
	CommitWeight     float64 `json:"commit_weight"`
	Weighted         float64 `json:"weighted"`
}

// Classifier evaluates diffs. It holds no mutable state.
type Classifier struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used for debug breakdowns.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Classifier.
func New(cfg Config, opts ...Option) *Classifier {
	c := &Classifier{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Config returns the classifier settings.
func (c *Classifier) Config() Config {
	return c.cfg
}

// Classify reports whether a change is substantial. An empty message means none.
func (c *Classifier) Classify(diff, filePath, message string) bool {
	return c.Evaluate(diff, filePath, message).Substantial
}

// Evaluate classifies a change and returns every intermediate weight.
func (c *Classifier) Evaluate(diff, filePath, message string) Verdict {
	if diff == "" {
		return Verdict{Reason: ReasonEmptyDiff}
	}

	if IsBinaryPath(filePath) {
		return Verdict{Reason: ReasonBinary}
	}

	added, removed := splitChanges(diff)

	if c.cfg.IgnoreWhitespaceOnly && whitespaceOnly(added, removed) {
		return Verdict{Reason: ReasonWhitespaceOnly, Added: len(added), Removed: len(removed)}
	}

	v := Verdict{
		Added:            len(added),
		Removed:          len(removed),
		Total:            len(added) + len(removed),
		FileWeight:       FileWeight(filePath),
		ComplexityWeight: ComplexityWeight(added),
		CommitWeight:     CommitWeight(message),
	}

	v.Weighted = float64(v.Total) * v.FileWeight * v.ComplexityWeight * v.CommitWeight
	v.Substantial = v.Weighted >= float64(c.cfg.MinChangeThreshold)

	v.Reason = ReasonWeighted
	if !v.Substantial {
		v.Reason = ReasonBelowThreshold
	}

	if c.logger.Enabled(context.Background(), slog.LevelDebug) {
		c.logger.Debug("classified change",
			"file", filePath,
			"changes", v.Total,
			"file_weight", v.FileWeight,
			"complexity", v.ComplexityWeight,
			"commit_weight", v.CommitWeight,
			"weighted", v.Weighted,
			"substantial", v.Substantial,
		)
	}

	return v
}

// splitChanges returns added and removed line contents with the marker
// stripped. File header lines are excluded.
func splitChanges(diff string) (added, removed []string) {
	for line := range strings.SplitSeq(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			continue
		case strings.HasPrefix(line, "+"):
			added = append(added, line[1:])
		case strings.HasPrefix(line, "-"):
			removed = append(removed, line[1:])
		}
	}

	return added, removed
}

// whitespaceOnly reports whether the change carries no content beyond
// whitespace: either every changed line is blank, or each removed line
// matches the added line at the same position once whitespace is dropped.
func whitespaceOnly(added, removed []string) bool {
	a := squeezeAll(added)
	r := squeezeAll(removed)

	if len(a) == 0 && len(r) == 0 {
		return true
	}

	if len(a) != len(r) {
		return false
	}

	return slices.Equal(a, r)
}

func squeezeAll(lines []string) []string {
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if s := stripSpace(line); s != "" {
			out = append(out, s)
		}
	}

	return out
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, s)
}
