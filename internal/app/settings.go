package app

import (
	"slices"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"

	"github.com/ledgerdesk/ledgerdesk/internal/keys"
	"github.com/ledgerdesk/ledgerdesk/internal/ui"
)

const optionNotifications = "notifications"

// settings is the overlay form for theme and notification preferences.
// Values are bound to the huh form by pointer; enter applies them, esc
// discards.
type settings struct {
	selectedTheme  string
	generalOptions []string
	form           *huh.Form
}

func newSettings(currentTheme string, notificationsEnabled bool) *settings {
	s := &settings{selectedTheme: currentTheme}
	if notificationsEnabled {
		s.generalOptions = append(s.generalOptions, optionNotifications)
	}

	names := ui.ThemeNames()
	themeOptions := make([]huh.Option[string], len(names))
	for i, n := range names {
		themeOptions[i] = huh.NewOption(ui.BuiltinThemes[n].Name, string(n))
	}
	generalOpts := []huh.Option[string]{
		huh.NewOption("Desktop notifications", optionNotifications).
			Selected(notificationsEnabled),
	}

	s.form = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Theme").
			Options(themeOptions...).
			Value(&s.selectedTheme),
		huh.NewMultiSelect[string]().
			Title("Options").
			Options(generalOpts...).
			Height(len(generalOpts)).
			Value(&s.generalOptions),
	)).
		WithTheme(ui.FormTheme()).
		WithShowHelp(false).
		WithWidth(44)
	s.form.Init()
	return s
}

func (s *settings) notificationsEnabled() bool {
	return slices.Contains(s.generalOptions, optionNotifications)
}

// Update delegates to the huh form. Enter and esc are handled by the app,
// not the form.
func (s *settings) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case keys.Enter, keys.Escape:
			return nil
		}
	}
	m, cmd := s.form.Update(msg)
	s.form = m.(*huh.Form)
	return cmd
}

func (s *settings) View() string {
	title := ui.PanelTitleStyle.Render("Settings")
	hint := ui.FormHintStyle.Render("enter saves, esc cancels")
	return title + "\n\n" + s.form.View() + "\n" + hint
}
