package terminal

import (
	"fmt"
	"strings"
)

// Box drawing characters.
const (
	BoxHorizontal       = "─"
	BoxHeavyHorizontal  = "━"
	BoxHeavyVertical    = "┃"
	BoxHeavyTopLeft     = "┏"
	BoxHeavyTopRight    = "┓"
	BoxHeavyBottomLeft  = "┗"
	BoxHeavyBottomRight = "┛"
)

// Progress bar characters.
const (
	ProgressFilled = "█"
	ProgressEmpty  = "░"
)

// HeaderPadding is the space around header content.
const HeaderPadding = 1

// DrawSeparator draws a thin horizontal line.
func DrawSeparator(width int) string {
	if width <= 0 {
		return ""
	}

	return strings.Repeat(BoxHorizontal, width)
}

// DrawHeader draws a heavy-bordered section header with title on the left
// and rightText on the right. It widens to fit its content.
func DrawHeader(title, rightText string, width int) string {
	const borders = 2

	contentWidth := Width(title) + Width(rightText) + 1
	width = max(width, contentWidth+borders+2*HeaderPadding)
	innerWidth := width - borders

	gap := innerWidth - 2*HeaderPadding - Width(title) - Width(rightText)
	pad := strings.Repeat(" ", HeaderPadding)

	var b strings.Builder

	b.WriteString(BoxHeavyTopLeft + strings.Repeat(BoxHeavyHorizontal, innerWidth) + BoxHeavyTopRight + "\n")
	b.WriteString(BoxHeavyVertical + pad + title + strings.Repeat(" ", gap) + rightText + pad + BoxHeavyVertical + "\n")
	b.WriteString(BoxHeavyBottomLeft + strings.Repeat(BoxHeavyHorizontal, innerWidth) + BoxHeavyBottomRight)

	return b.String()
}

// DrawProgressBar draws value in [0, 1] as a bar of width cells.
func DrawProgressBar(value float64, width int) string {
	value = min(max(value, 0), 1)
	filled := int(value * float64(width))

	return strings.Repeat(ProgressFilled, filled) + strings.Repeat(ProgressEmpty, width-filled)
}

// DrawPercentBar draws a labeled bar: "Morning   ████░░░░  50%  (12)".
func DrawPercentBar(label string, part, total, labelWidth, barWidth int) string {
	ratio := 0.0
	if total > 0 {
		ratio = float64(part) / float64(total)
	}

	const percent = 100

	return fmt.Sprintf("%s %s %3d%%  (%d)", PadRight(label, labelWidth), DrawProgressBar(ratio, barWidth),
		int(ratio*percent+0.5), part)
}
