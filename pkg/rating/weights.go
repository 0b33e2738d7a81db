// Package rating turns finalized developer statistics into a ranked
// usefulness score on a 0-100 display scale.
package rating

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Weight resolution errors.
var (
	ErrInvalidWeightValue = errors.New("invalid weight value")
	ErrReadWeights        = errors.New("cannot read weights file")
	ErrInvalidWeightsFile = errors.New("invalid weights file")
	ErrUnknownFactor      = errors.New("unknown rating factor")
)

// Factor names accepted in weight configuration.
const (
	FactorSubstantialCommits = "substantial_commits"
	FactorLines              = "lines"
	FactorImpact             = "impact"
	FactorSubstantiveRatio   = "substantive_ratio"
	FactorRevertPenalty      = "revert_penalty"
	FactorDailyActivity      = "daily_activity"
	FactorMergePenalty       = "merge_penalty"
)

// FactorInfo describes one rating factor.
type FactorInfo struct {
	Name        string  `json:"name"        yaml:"name"`
	OutputKey   string  `json:"output_key"  yaml:"output_key"`
	Default     float64 `json:"default"     yaml:"default"`
	Description string  `json:"description" yaml:"description"`
}

// Factors lists every factor in scoring order.
var Factors = []FactorInfo{
	{
		Name:        FactorSubstantialCommits,
		OutputKey:   "substantial_commits",
		Default:     0.3,
		Description: "Commits with substantial changes. Reflects the ability to make meaningful, significant changes.",
	},
	{
		Name:        FactorLines,
		OutputKey:   "lines_contributed",
		Default:     0.15,
		Description: "Total lines added and removed. Reflects the volume of work done.",
	},
	{
		Name:        FactorImpact,
		OutputKey:   "commit_impact",
		Default:     0.25,
		Description: "Commit footprint on the codebase, combining files changed and change volume.",
	},
	{
		Name:        FactorSubstantiveRatio,
		OutputKey:   "substantive_ratio",
		Default:     0.2,
		Description: "Share of substantial commits among all commits. Reflects the quality of changes.",
	},
	{
		Name:        FactorRevertPenalty,
		OutputKey:   "revert_penalty",
		Default:     -0.1,
		Description: "Penalty for reverted commits. Reflects the stability of changes.",
	},
	{
		Name:        FactorDailyActivity,
		OutputKey:   "daily_activity",
		Default:     0.2,
		Description: "Regularity of activity over time.",
	},
	{
		Name:        FactorMergePenalty,
		OutputKey:   "merge_penalty",
		Default:     -0.05,
		Description: "Penalty for merge commits. Reflects integration of other people's code.",
	},
}

// LookupFactor returns the factor with the given configuration name.
func LookupFactor(name string) (FactorInfo, bool) {
	for _, f := range Factors {
		if f.Name == name {
			return f, true
		}
	}

	return FactorInfo{}, false
}

// Weights maps factor name to its signed multiplier.
type Weights map[string]float64

// DefaultWeights returns a fresh copy of the built-in weights.
func DefaultWeights() Weights {
	w := make(Weights, len(Factors))
	for _, f := range Factors {
		w[f.Name] = f.Default
	}

	return w
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	return maps.Clone(w)
}

// FactorDescriptions returns factor name to description for every factor.
func FactorDescriptions() map[string]string {
	out := make(map[string]string, len(Factors))
	for _, f := range Factors {
		out[f.Name] = f.Description
	}

	return out
}

// Diagnostics collects non-fatal findings of weight resolution.
type Diagnostics struct {
	Unknown []string `json:"unknown_factors" yaml:"unknown_factors"`
}

// Errors returns one ErrUnknownFactor per ignored name.
func (d Diagnostics) Errors() []error {
	errs := make([]error, 0, len(d.Unknown))
	for _, name := range d.Unknown {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownFactor, name))
	}

	return errs
}

func (d *Diagnostics) addUnknown(name string) {
	if !slices.Contains(d.Unknown, name) {
		d.Unknown = append(d.Unknown, name)
	}
}

// Sources are the inputs to Resolve in increasing precedence.
type Sources struct {
	// File holds weights read from a weights file.
	File map[string]float64
	// Overrides hold command-line or config values. Values may be numbers or
	// numeric strings.
	Overrides map[string]any
}

// Resolve layers defaults, file weights and overrides. Unknown names are
// skipped and reported; a non-numeric override is fatal.
func Resolve(src Sources, logger *slog.Logger) (Weights, Diagnostics, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	weights := DefaultWeights()

	var diag Diagnostics

	for _, name := range slices.Sorted(maps.Keys(src.File)) {
		apply(weights, &diag, logger, name, src.File[name])
	}

	for _, name := range slices.Sorted(maps.Keys(src.Overrides)) {
		value, err := ParseValue(name, src.Overrides[name])
		if err != nil {
			return nil, Diagnostics{}, err
		}

		apply(weights, &diag, logger, name, value)
	}

	slices.Sort(diag.Unknown)

	return weights, diag, nil
}

func apply(weights Weights, diag *Diagnostics, logger *slog.Logger, name string, value float64) {
	if _, ok := weights[name]; !ok {
		logger.Warn("ignoring unknown rating factor", "factor", name)
		diag.addUnknown(name)

		return
	}

	weights[name] = value
}

// ParseValue converts a configured weight to float64.
func ParseValue(name string, v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %s=%q", ErrInvalidWeightValue, name, val)
		}

		return f, nil
	default:
		return 0, fmt.Errorf("%w: %s=%v", ErrInvalidWeightValue, name, v)
	}
}

// ParseAssignment splits a name=value pair.
func ParseAssignment(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)

	if !ok || name == "" {
		return "", "", fmt.Errorf("%w: %q is not name=value", ErrInvalidWeightValue, s)
	}

	return name, strings.TrimSpace(value), nil
}
