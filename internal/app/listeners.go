package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// listenForChange creates a command that waits for the next state change
// of one container. The command re-arms itself from the Update loop each
// time it fires. done stops the listener when the container closes, so a
// screen switch does not leak a goroutine per visit.
func listenForChange(screen Screen, ch <-chan struct{}, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-done:
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return StateChangedMsg{Screen: screen}
		}
	}
}

// listenForAction creates a command that waits for the next one-shot
// action of one container.
func listenForAction(screen Screen, ch <-chan store.Action, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-done:
			return nil
		case a, ok := <-ch:
			if !ok {
				return nil
			}
			return ActionMsg{Screen: screen, Action: a}
		}
	}
}

// listenForEvent creates a command that waits for the next server push
// event. The events channel closes when the stream drops.
func listenForEvent(ch <-chan api.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return ServerEventMsg{Event: ev}
	}
}
