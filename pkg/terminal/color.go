package terminal

import "github.com/fatih/color"

// Color names a foreground color.
type Color int

// Color constants.
const (
	ColorNone Color = iota
	ColorGreen
	ColorYellow
	ColorRed
	ColorBlue
	ColorGray
	ColorBold
)

// Relative score thresholds for color assignment.
const (
	ScoreThresholdGood = 0.8
	ScoreThresholdFair = 0.5
)

var colorAttrs = map[Color]color.Attribute{
	ColorGreen:  color.FgGreen,
	ColorYellow: color.FgYellow,
	ColorRed:    color.FgRed,
	ColorBlue:   color.FgBlue,
	ColorGray:   color.FgHiBlack,
	ColorBold:   color.Bold,
}

// Colorize applies c to text unless color output is disabled.
func (cfg Config) Colorize(text string, c Color) string {
	if cfg.NoColor {
		return text
	}

	attr, ok := colorAttrs[c]
	if !ok {
		return text
	}

	painter := color.New(attr)
	painter.EnableColor()

	return painter.Sprint(text)
}

// ColorForScore returns the color for a score relative to the best score in
// the population. Non-positive maxima render red.
func ColorForScore(score, best float64) Color {
	if best <= 0 {
		return ColorRed
	}

	ratio := score / best

	switch {
	case ratio >= ScoreThresholdGood:
		return ColorGreen
	case ratio >= ScoreThresholdFair:
		return ColorYellow
	default:
		return ColorRed
	}
}
