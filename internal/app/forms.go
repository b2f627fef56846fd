package app

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// formField describes one input in a screen form.
type formField struct {
	label       string
	placeholder string
	secret      bool
	value       string
}

// form owns the text inputs of the active screen. Containers hold the
// authoritative field values; the form is only the editing surface, and
// every keystroke is mirrored into the container as an update intent.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(fields ...formField) *form {
	f := &form{}
	for i, fd := range fields {
		in := textinput.New()
		in.Placeholder = fd.placeholder
		in.SetValue(fd.value)
		if fd.secret {
			in.EchoMode = textinput.EchoPassword
		}
		if i == 0 {
			in.Focus()
		}
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, in)
	}
	return f
}

// Focused returns the index of the focused input.
func (f *form) Focused() int {
	return f.focus
}

// Value returns the current text of input i.
func (f *form) Value(i int) string {
	if i < 0 || i >= len(f.inputs) {
		return ""
	}
	return f.inputs[i].Value()
}

// Next moves focus to the following input, wrapping around.
func (f *form) Next() {
	f.setFocus((f.focus + 1) % len(f.inputs))
}

// Prev moves focus to the preceding input, wrapping around.
func (f *form) Prev() {
	f.setFocus((f.focus - 1 + len(f.inputs)) % len(f.inputs))
}

func (f *form) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[f.focus].Focus()
}

// Update forwards a message to the focused input and returns its new
// value so the caller can mirror it into the container.
func (f *form) Update(msg tea.Msg) (string, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f.inputs[f.focus].Value(), cmd
}
