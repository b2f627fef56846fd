// Package errors provides structured error types for the Ledgerdesk client.
// These errors provide context about what operation failed and where, and
// carry a Kind so the UI can decide how to present the failure.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindNetwork
	KindNotFound
	KindConflict
	KindConfig
	KindTimeout
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation error"
	case KindAuth:
		return "authentication error"
	case KindNetwork:
		return "network error"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindConfig:
		return "configuration error"
	case KindTimeout:
		return "timeout"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for Ledgerdesk.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage returns a message safe to show to the user. Validation and
// domain errors keep their context; anything unknown is collapsed to a
// generic message so raw transport errors never reach the screen.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "Something went wrong. Please try again."
	}
	switch e.Kind {
	case KindValidation, KindAuth, KindNotFound, KindConflict:
		if e.Context != "" {
			return e.Context
		}
		return e.Err.Error()
	case KindNetwork:
		return "Could not reach the server. Check your connection and try again."
	case KindTimeout:
		return "The server took too long to respond. Please try again."
	case KindConfig:
		return "Local configuration problem: " + e.Err.Error()
	default:
		return "Something went wrong. Please try again."
	}
}

// Auth errors
func InvalidCredentials() error {
	return E(Op("account.Login"), KindAuth, "Invalid email or password.")
}

func SessionExpired() error {
	return E(Op("api.Do"), KindAuth, "Your session has expired. Please sign in again.")
}

// Validation errors
func FieldRequired(name string) error {
	return E(Op("field.Validate"), KindValidation, fmt.Sprintf("%s is required.", name))
}

func FieldInvalid(name, reason string) error {
	return E(Op("field.Validate"), KindValidation, fmt.Sprintf("%s %s", name, reason))
}

func PasswordsDoNotMatch() error {
	return E(Op("field.ValidateConfirmation"), KindValidation, "Passwords do not match.")
}

// Server connection errors
func ServerUnreachable(host string, err error) error {
	return E(Op("api.Handshake"), KindNetwork, fmt.Sprintf("could not reach %s", host), err)
}

// Workspace errors
func CompanyLookupFailed(query string, err error) error {
	return E(Op("registry.Search"), KindNetwork, fmt.Sprintf("company lookup for %q failed", query), err)
}

func TenantCreateFailed(name string, err error) error {
	return E(Op("tenant.Create"), KindConflict, fmt.Sprintf("could not create workspace %q", name), err)
}

// Config errors
func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}
