package terminal

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Ellipsis is appended to truncated strings.
const Ellipsis = "..."

// TruncateWithEllipsis shortens s to maxWidth display columns.
func TruncateWithEllipsis(s string, maxWidth int) string {
	if text.StringWidthWithoutEscSequences(s) <= maxWidth {
		return s
	}

	if maxWidth <= len(Ellipsis) {
		return strings.Repeat(".", max(maxWidth, 0))
	}

	return text.Trim(s, maxWidth-len(Ellipsis)) + Ellipsis
}

// PadRight pads s with spaces to width display columns.
func PadRight(s string, width int) string {
	return text.Pad(s, width, ' ')
}

// Width returns the display width of s, ignoring ANSI escapes.
func Width(s string) int {
	return text.StringWidthWithoutEscSequences(s)
}
