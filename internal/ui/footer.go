package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// FlashType determines the color of a flash message
type FlashType int

const (
	FlashInfo FlashType = iota
	FlashSuccess
	FlashWarning
	FlashError
)

// DefaultFlashDuration is how long a flash message stays visible
const DefaultFlashDuration = 4 * time.Second

// FlashTickMsg is sent periodically while a flash message is visible so
// the footer can drop it once expired.
type FlashTickMsg time.Time

// FlashTick returns a command that schedules the next flash expiry check
func FlashTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return FlashTickMsg(t)
	})
}

// Footer represents the bottom footer bar with keybindings and transient
// flash messages. A visible flash replaces the bindings until it expires.
type Footer struct {
	width    int
	bindings []KeyBinding

	flashText    string
	flashType    FlashType
	flashExpires time.Time
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{}
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetBindings sets the keybindings for the current screen
func (f *Footer) SetBindings(bindings []KeyBinding) {
	f.bindings = bindings
}

// SetFlash shows a flash message with the default duration
func (f *Footer) SetFlash(text string, flashType FlashType) {
	f.SetFlashWithDuration(text, flashType, DefaultFlashDuration)
}

// SetFlashWithDuration shows a flash message for a custom duration
func (f *Footer) SetFlashWithDuration(text string, flashType FlashType, d time.Duration) {
	f.flashText = text
	f.flashType = flashType
	f.flashExpires = time.Now().Add(d)
}

// HasFlash reports whether an unexpired flash message is visible
func (f *Footer) HasFlash() bool {
	return f.flashText != "" && time.Now().Before(f.flashExpires)
}

// ClearExpiredFlash drops the flash message once its time is up.
// Returns true if a flash was cleared.
func (f *Footer) ClearExpiredFlash() bool {
	if f.flashText != "" && !time.Now().Before(f.flashExpires) {
		f.flashText = ""
		return true
	}
	return false
}

// ClearFlash drops the flash message immediately
func (f *Footer) ClearFlash() {
	f.flashText = ""
}

func (f *Footer) flashStyle() lipgloss.Style {
	switch f.flashType {
	case FlashError:
		return StatusErrorStyle
	case FlashWarning:
		return lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	case FlashSuccess:
		return StatusSuccessStyle
	default:
		return lipgloss.NewStyle().Foreground(ColorInfo)
	}
}

// View renders the footer
func (f *Footer) View() string {
	if f.HasFlash() {
		return FooterStyle.Width(f.width).Render(f.flashStyle().Render(f.flashText))
	}

	var parts []string
	for _, b := range f.bindings {
		key := FooterKeyStyle.Render(b.Key)
		desc := FooterDescStyle.Render(": " + b.Desc)
		parts = append(parts, key+desc)
	}

	content := strings.Join(parts, "  "+lipgloss.NewStyle().Foreground(ColorBorder).Render("|")+"  ")

	return FooterStyle.Width(f.width).Render(content)
}
