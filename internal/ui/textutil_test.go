package ui

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestDisplayWidth(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"invoice", 7},
		{"Ümläut", 6},
		{"日本語", 6}, // wide characters count double
	}
	for _, tc := range cases {
		if got := DisplayWidth(tc.in); got != tc.want {
			t.Errorf("DisplayWidth(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer counterparty name", 10, "a longer …"},
		{"anything", 0, ""},
	}
	for _, tc := range cases {
		if got := Truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestTruncateNeverSplitsWideCharacter(t *testing.T) {
	got := Truncate("日本語の請求書", 5)
	if DisplayWidth(got) > 5 {
		t.Errorf("truncated string too wide: %q (%d cells)", got, DisplayWidth(got))
	}
}

func TestTruncateStyledIgnoresEscapeSequences(t *testing.T) {
	styled := "\x1b[31mred counterparty name\x1b[0m"
	got := TruncateStyled(styled, 10)
	if w := ansi.StringWidth(got); w > 10 {
		t.Errorf("styled truncation too wide: %d cells", w)
	}

	short := "\x1b[31mred\x1b[0m"
	if got := TruncateStyled(short, 10); got != short {
		t.Errorf("short styled string must pass through, got %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ok", 5); got != "ok   " {
		t.Errorf("PadRight = %q", got)
	}
	if got := DisplayWidth(PadRight("a very long value", 8)); got != 8 {
		t.Errorf("padded width = %d, want 8", got)
	}
}
