package app

import (
	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// Screen identifies which screen the app is showing. Exactly one screen
// container is active at a time; switching screens closes the old one.
type Screen int

const (
	ScreenServerConn Screen = iota
	ScreenLogin
	ScreenRegister
	ScreenForgotPassword
	ScreenResetPassword
	ScreenWorkspaceSelect
	ScreenWorkspaceWizard
	ScreenReview
	ScreenProfile
	ScreenSessions

	// screenProfilePassword is a listener routing key only: the profile
	// screen runs a second container for the password form, and its
	// listeners must re-arm independently of the profile container's.
	screenProfilePassword
)

func (s Screen) String() string {
	switch s {
	case ScreenServerConn:
		return "server-connection"
	case ScreenLogin:
		return "login"
	case ScreenRegister:
		return "register"
	case ScreenForgotPassword:
		return "forgot-password"
	case ScreenResetPassword:
		return "reset-password"
	case ScreenWorkspaceSelect:
		return "workspace-select"
	case ScreenWorkspaceWizard:
		return "workspace-wizard"
	case ScreenReview:
		return "review"
	case ScreenProfile:
		return "profile"
	case ScreenSessions:
		return "sessions"
	case screenProfilePassword:
		return "profile-password"
	default:
		return "unknown"
	}
}

// StateChangedMsg reports that a container's state changed; the view
// re-reads the state snapshot on render.
type StateChangedMsg struct {
	Screen Screen
}

// ActionMsg carries a one-shot action from a container to the app for
// navigation and flash handling.
type ActionMsg struct {
	Screen Screen
	Action store.Action
}

// ServerEventMsg carries one push event from the server event stream.
type ServerEventMsg struct {
	Event api.Event
}

// streamClosedMsg reports that the event stream dropped.
type streamClosedMsg struct{}
