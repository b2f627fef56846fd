// Package ui provides theme management for the application.
// Themes define the color palette used throughout the UI, allowing users
// to customize the visual appearance of Ledgerdesk.
package ui

import "sync"

// Theme defines a complete color palette for the application.
// Each theme provides colors for all UI elements, ensuring visual consistency.
type Theme struct {
	// Name is the display name of the theme
	Name string

	// Primary is the main accent color (used for focus, highlights, headers)
	Primary string
	// Secondary is the secondary accent color (used for values, info)
	Secondary string

	// Background colors
	Bg         string // Main background
	BgSelected string // Selected item background (defaults to Primary if empty)

	// Text colors
	Text        string // Primary text
	TextMuted   string // Secondary/muted text
	TextInverse string // Text on colored backgrounds

	// Semantic colors
	Warning string // Pending review markers, warnings
	Error   string // Error messages
	Info    string // Information, notices
	Success string // Approvals, confirmations

	// Border colors
	Border      string // Default borders
	BorderFocus string // Focused element borders (defaults to Primary if empty)

	// Amount colors (for the document queue)
	AmountCredit string // Incoming amounts
	AmountDebit  string // Outgoing amounts
}

// GetBgSelected returns the selected background color, defaulting to Primary
func (t Theme) GetBgSelected() string {
	if t.BgSelected != "" {
		return t.BgSelected
	}
	return t.Primary
}

// GetBorderFocus returns the focused border color, defaulting to Primary
func (t Theme) GetBorderFocus() string {
	if t.BorderFocus != "" {
		return t.BorderFocus
	}
	return t.Primary
}

// ThemeName is a type for theme identifiers
type ThemeName string

// Available theme names
const (
	ThemeDarkPurple ThemeName = "dark-purple"
	ThemeNord       ThemeName = "nord"
	ThemeLight      ThemeName = "light"
)

// DefaultTheme is the default theme name
const DefaultTheme = ThemeDarkPurple

// BuiltinThemes contains all built-in themes
var BuiltinThemes = map[ThemeName]Theme{
	ThemeDarkPurple: {
		Name:         "Dark Purple",
		Primary:      "#7C3AED",
		Secondary:    "#06B6D4",
		Bg:           "#1F2937",
		Text:         "#F9FAFB",
		TextMuted:    "#9CA3AF",
		TextInverse:  "#1F2937",
		Warning:      "#F59E0B",
		Error:        "#EF4444",
		Info:         "#06B6D4",
		Success:      "#10B981",
		Border:       "#374151",
		AmountCredit: "#4ADE80",
		AmountDebit:  "#F87171",
	},
	ThemeNord: {
		Name:         "Nord",
		Primary:      "#88C0D0",
		Secondary:    "#81A1C1",
		Bg:           "#2E3440",
		Text:         "#ECEFF4",
		TextMuted:    "#D8DEE9",
		TextInverse:  "#2E3440",
		Warning:      "#EBCB8B",
		Error:        "#BF616A",
		Info:         "#81A1C1",
		Success:      "#A3BE8C",
		Border:       "#4C566A",
		AmountCredit: "#A3BE8C",
		AmountDebit:  "#BF616A",
	},
	ThemeLight: {
		Name:         "Light",
		Primary:      "#6D28D9",
		Secondary:    "#0891B2",
		Bg:           "#FFFFFF",
		BgSelected:   "#DDD6FE",
		Text:         "#111827",
		TextMuted:    "#6B7280",
		TextInverse:  "#FFFFFF",
		Warning:      "#D97706",
		Error:        "#DC2626",
		Info:         "#0891B2",
		Success:      "#059669",
		Border:       "#D1D5DB",
		AmountCredit: "#059669",
		AmountDebit:  "#DC2626",
	},
}

var (
	themeMu      sync.RWMutex
	currentTheme = DefaultTheme
)

// CurrentTheme returns the active theme.
func CurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return BuiltinThemes[currentTheme]
}

// SetTheme switches the active theme and regenerates the style set.
// Unknown names fall back to the default theme.
func SetTheme(name ThemeName) {
	themeMu.Lock()
	if _, ok := BuiltinThemes[name]; !ok {
		name = DefaultTheme
	}
	currentTheme = name
	themeMu.Unlock()
	regenerateStyles()
}

// ThemeNames returns the available theme identifiers in a stable order.
func ThemeNames() []ThemeName {
	return []ThemeName{ThemeDarkPurple, ThemeNord, ThemeLight}
}
