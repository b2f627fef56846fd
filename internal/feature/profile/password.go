package profile

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/field"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// PasswordState is the sealed state set for the change-password form.
type PasswordState interface{ passwordState() }

// PasswordIdle is the editable form.
type PasswordIdle struct {
	Current      string
	New          field.Password
	Confirmation string
	FieldError   string
}

// PasswordSubmitting is the in-flight change call.
type PasswordSubmitting struct {
	Current string
	New     field.Password
}

// PasswordErrored is a failed change with the intent to replay.
type PasswordErrored struct {
	Current string
	New     field.Password
	Cause   error
	Retry   store.Intent
}

func (PasswordIdle) passwordState()       {}
func (PasswordSubmitting) passwordState() {}
func (PasswordErrored) passwordState()    {}

// Change-password intents.
type (
	UpdateCurrentPassword      struct{ Value string }
	UpdateNewPassword          struct{ Value string }
	UpdatePasswordConfirmation struct{ Value string }
	SubmitPassword             struct{}
	RetryPassword              struct{}

	replayPassword struct {
		Current string
		New     field.Password
	}
)

// PasswordUpdated is emitted once the password change succeeded.
type PasswordUpdated struct{}

// PasswordChanger is the injected use-case.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, current, updated string) error
}

// PasswordContainer is the change-password form container.
type PasswordContainer struct {
	*store.Store[PasswordState]
	changer PasswordChanger
}

// NewPasswordContainer creates and starts the container.
func NewPasswordContainer(ch PasswordChanger) *PasswordContainer {
	c := &PasswordContainer{
		Store:   store.New[PasswordState]("change-password", PasswordIdle{}),
		changer: ch,
	}
	c.Run(c.reduce)
	return c
}

func (c *PasswordContainer) reduce(ctx context.Context, i store.Intent) {
	switch i := i.(type) {
	case UpdateCurrentPassword:
		c.edit(func(s PasswordIdle) PasswordIdle { s.Current = i.Value; return s })
	case UpdateNewPassword:
		c.edit(func(s PasswordIdle) PasswordIdle { s.New = field.NewPassword(i.Value); return s })
	case UpdatePasswordConfirmation:
		c.edit(func(s PasswordIdle) PasswordIdle { s.Confirmation = i.Value; return s })
	case SubmitPassword:
		store.With(c.Store, func(s PasswordIdle) {
			if s.Current == "" {
				c.fail(errors.FieldRequired("Current password"))
				return
			}
			if err := s.New.ValidateConfirmation(s.Confirmation); err != nil {
				c.fail(err)
				return
			}
			c.UpdateState(func(PasswordState) PasswordState {
				return PasswordSubmitting{Current: s.Current, New: s.New}
			})
			c.submit(ctx, s.Current, s.New)
		})
	case RetryPassword:
		store.With(c.Store, func(s PasswordErrored) {
			c.UpdateState(func(PasswordState) PasswordState {
				return PasswordSubmitting{Current: s.Current, New: s.New}
			})
			c.Dispatch(s.Retry)
		})
	case replayPassword:
		c.UpdateState(func(PasswordState) PasswordState {
			return PasswordSubmitting{Current: i.Current, New: i.New}
		})
		c.submit(ctx, i.Current, i.New)
	}
}

func (c *PasswordContainer) edit(apply func(PasswordIdle) PasswordIdle) {
	c.UpdateState(func(s PasswordState) PasswordState {
		switch s := s.(type) {
		case PasswordIdle:
			s.FieldError = ""
			return apply(s)
		case PasswordErrored:
			// Editing after a failure returns to the form; the
			// confirmation must be typed again.
			return apply(PasswordIdle{Current: s.Current, New: s.New})
		default:
			return s
		}
	})
}

func (c *PasswordContainer) fail(err error) {
	c.UpdateState(func(s PasswordState) PasswordState {
		if idle, ok := s.(PasswordIdle); ok {
			idle.FieldError = errors.UserMessage(err)
			return idle
		}
		return s
	})
}

func (c *PasswordContainer) submit(ctx context.Context, current string, updated field.Password) {
	if err := c.changer.ChangePassword(ctx, current, updated.Raw); err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(PasswordState) PasswordState {
			return PasswordErrored{
				Current: current,
				New:     updated,
				Cause:   err,
				Retry:   replayPassword{Current: current, New: updated},
			}
		})
		return
	}
	c.UpdateState(func(PasswordState) PasswordState { return PasswordIdle{} })
	c.Emit(PasswordUpdated{})
}
