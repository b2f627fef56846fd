package ui

import "charm.land/lipgloss/v2"

// Color palette, regenerated when the theme changes.
var (
	ColorPrimary     = lipgloss.Color(BuiltinThemes[DefaultTheme].Primary)
	ColorSecondary   = lipgloss.Color(BuiltinThemes[DefaultTheme].Secondary)
	ColorBorder      = lipgloss.Color(BuiltinThemes[DefaultTheme].Border)
	ColorBorderFocus = lipgloss.Color(BuiltinThemes[DefaultTheme].GetBorderFocus())
	ColorBg          = lipgloss.Color(BuiltinThemes[DefaultTheme].Bg)
	ColorText        = lipgloss.Color(BuiltinThemes[DefaultTheme].Text)
	ColorTextMuted   = lipgloss.Color(BuiltinThemes[DefaultTheme].TextMuted)
	ColorTextInverse = lipgloss.Color(BuiltinThemes[DefaultTheme].TextInverse)
	ColorWarning     = lipgloss.Color(BuiltinThemes[DefaultTheme].Warning)
	ColorInfo        = lipgloss.Color(BuiltinThemes[DefaultTheme].Info)
	ColorError       = lipgloss.Color(BuiltinThemes[DefaultTheme].Error)
	ColorSuccess     = lipgloss.Color(BuiltinThemes[DefaultTheme].Success)
)

// Footer styles
var (
	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	FooterKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	PanelFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderFocus)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1)
)

// Form styles
var (
	FormLabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	FormValueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	FormErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	FormNoticeStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	FormHintStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// List styles
var (
	ListItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ListSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(BuiltinThemes[DefaultTheme].GetBgSelected())).
				Foreground(lipgloss.Color(BuiltinThemes[DefaultTheme].Text)).
				Bold(true).
				Padding(0, 1)

	ListMetaStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// Status styles
var (
	StatusLoadingStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Italic(true)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StatusSuccessStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess)
)

// Amount styles for the document queue
var (
	AmountCreditStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(BuiltinThemes[DefaultTheme].AmountCredit))

	AmountDebitStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(BuiltinThemes[DefaultTheme].AmountDebit))
)

// regenerateStyles rebuilds every package-level style from the current
// theme. Styles are read from the render goroutine only, after the theme
// switch has been handled as a message.
func regenerateStyles() {
	t := CurrentTheme()

	ColorPrimary = lipgloss.Color(t.Primary)
	ColorSecondary = lipgloss.Color(t.Secondary)
	ColorBorder = lipgloss.Color(t.Border)
	ColorBorderFocus = lipgloss.Color(t.GetBorderFocus())
	ColorBg = lipgloss.Color(t.Bg)
	ColorText = lipgloss.Color(t.Text)
	ColorTextMuted = lipgloss.Color(t.TextMuted)
	ColorTextInverse = lipgloss.Color(t.TextInverse)
	ColorWarning = lipgloss.Color(t.Warning)
	ColorInfo = lipgloss.Color(t.Info)
	ColorError = lipgloss.Color(t.Error)
	ColorSuccess = lipgloss.Color(t.Success)

	FooterStyle = lipgloss.NewStyle().Foreground(ColorTextMuted).Padding(0, 1)
	FooterKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary)
	FooterDescStyle = lipgloss.NewStyle().Foreground(ColorTextMuted)

	PanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorder)
	PanelFocusedStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorderFocus)
	PanelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Padding(0, 1)

	FormLabelStyle = lipgloss.NewStyle().Foreground(ColorTextMuted)
	FormValueStyle = lipgloss.NewStyle().Foreground(ColorText)
	FormErrorStyle = lipgloss.NewStyle().Foreground(ColorError)
	FormNoticeStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	FormHintStyle = lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true)

	ListItemStyle = lipgloss.NewStyle().Padding(0, 1)
	ListSelectedStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(t.GetBgSelected())).
		Foreground(lipgloss.Color(t.Text)).
		Bold(true).
		Padding(0, 1)
	ListMetaStyle = lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true)

	StatusLoadingStyle = lipgloss.NewStyle().Foreground(ColorSecondary).Italic(true)
	StatusErrorStyle = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StatusSuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)

	AmountCreditStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.AmountCredit))
	AmountDebitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.AmountDebit))
}
