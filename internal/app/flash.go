package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/ledgerdesk/ledgerdesk/internal/ui"
)

// showFlash displays a transient info message in the footer and starts
// the expiry tick.
func (m *Model) showFlash(text string) tea.Cmd {
	m.footer.SetFlash(text, ui.FlashInfo)
	return ui.FlashTick()
}

func (m *Model) showFlashSuccess(text string) tea.Cmd {
	m.footer.SetFlash(text, ui.FlashSuccess)
	return ui.FlashTick()
}

func (m *Model) showFlashWarning(text string) tea.Cmd {
	m.footer.SetFlash(text, ui.FlashWarning)
	return ui.FlashTick()
}

func (m *Model) showFlashError(text string) tea.Cmd {
	m.footer.SetFlash(text, ui.FlashError)
	return ui.FlashTick()
}
