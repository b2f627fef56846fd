package ui

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// DisplayWidth returns the rendered terminal width of a string, counting
// grapheme clusters rather than runes so emoji and combining marks are
// measured correctly.
func DisplayWidth(s string) int {
	width := 0
	state := -1
	var cluster string
	rest := s
	for len(rest) > 0 {
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		width += runewidth.StringWidth(cluster)
	}
	return width
}

// Truncate cuts a string down to at most width terminal cells, appending
// an ellipsis when anything was removed. Cuts happen on grapheme cluster
// boundaries so a wide character is never split.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if DisplayWidth(s) <= width {
		return s
	}

	const ellipsis = "…"
	budget := width - runewidth.StringWidth(ellipsis)

	var out []byte
	used := 0
	state := -1
	var cluster string
	rest := s
	for len(rest) > 0 {
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		w := runewidth.StringWidth(cluster)
		if used+w > budget {
			break
		}
		out = append(out, cluster...)
		used += w
	}
	return string(out) + ellipsis
}

// TruncateStyled cuts a string carrying ANSI escape sequences down to at
// most width terminal cells, appending an ellipsis when anything was
// removed. Plain Truncate would count the escape bytes as content.
func TruncateStyled(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// PadRight pads a string with spaces to exactly width cells, truncating
// first if it is too long.
func PadRight(s string, width int) string {
	s = Truncate(s, width)
	for DisplayWidth(s) < width {
		s += " "
	}
	return s
}
