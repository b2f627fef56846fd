// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/ledgerdesk/ledgerdesk/internal/logger"
)

// Send sends a desktop notification with the given title and message.
// On macOS, it uses terminal-notifier or AppleScript.
// On Linux, it uses D-Bus or notify-send.
// On Windows, it uses the Windows Runtime COM API.
func Send(title, message string) error {
	logger.Debug("notification: sending title=%q message=%q", title, message)
	// Empty icon path; beeep falls back to platform defaults.
	err := beeep.Notify(title, message, "")
	if err != nil {
		logger.Warn("notification: send failed: %v", err)
	}
	return err
}

// DocumentQueued announces a new document awaiting review.
func DocumentQueued(counterparty string) error {
	return Send("Ledgerdesk", fmt.Sprintf("New document from %s awaiting review", counterparty))
}

// SessionRevoked announces that this device's session was revoked remotely.
func SessionRevoked() error {
	return Send("Ledgerdesk", "Your session was revoked. Please sign in again.")
}
