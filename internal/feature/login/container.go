// Package login holds the sign-in screen's state machine.
package login

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/field"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// State is the sealed state set for the sign-in screen. Exactly one
// variant is active at a time; fields are threaded explicitly across
// transitions.
type State interface{ loginState() }

// Idle is the editable form.
type Idle struct {
	Email      field.Email
	Password   field.Password
	FieldError string // inline validation error, cleared on the next edit
}

// Authenticating is the in-flight login call. Submissions in this state
// are no-ops.
type Authenticating struct {
	Email    field.Email
	Password field.Password
}

// Errored is a failed login. Retry is the exact intent to replay; its
// values were captured when the failure happened, not re-read from the
// form.
type Errored struct {
	Email    field.Email
	Password field.Password
	Cause    error
	Retry    store.Intent
}

func (Idle) loginState()           {}
func (Authenticating) loginState() {}
func (Errored) loginState()        {}

// Intents.
type (
	// UpdateEmail replaces the email field with the current input text.
	UpdateEmail struct{ Value string }
	// UpdatePassword replaces the password field with the current input text.
	UpdatePassword struct{ Value string }
	// Submit attempts to sign in with the current form values.
	Submit struct{}
	// Retry replays the request that produced the current error.
	Retry struct{}

	// replay carries the captured pre-failure input back through the
	// reducer. Stored in Errored.Retry.
	replay struct {
		Email    field.Email
		Password field.Password
	}
)

// LoggedIn is emitted once on success; the app navigates away and tears
// this container down.
type LoggedIn struct{ User api.User }

// Authenticator is the injected use-case.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.User, error)
}

// Container is the sign-in screen container.
type Container struct {
	*store.Store[State]
	auth Authenticator
}

// NewContainer creates and starts the container.
func NewContainer(auth Authenticator) *Container {
	c := &Container{
		Store: store.New[State]("login", Idle{}),
		auth:  auth,
	}
	c.Run(c.reduce)
	return c
}

func (c *Container) reduce(ctx context.Context, i store.Intent) {
	switch i := i.(type) {
	case UpdateEmail:
		c.edit(func(s Idle) Idle {
			s.Email = field.NewEmail(i.Value)
			return s
		})
	case UpdatePassword:
		c.edit(func(s Idle) Idle {
			s.Password = field.NewPassword(i.Value)
			return s
		})
	case Submit:
		c.submit(ctx)
	case Retry:
		// Move out of Errored before enqueueing the replay so a second
		// Retry finds nothing to match and becomes a no-op.
		store.With(c.Store, func(s Errored) {
			c.UpdateState(func(State) State {
				return Authenticating{Email: s.Email, Password: s.Password}
			})
			c.Dispatch(s.Retry)
		})
	case replay:
		c.UpdateState(func(State) State {
			return Authenticating{Email: i.Email, Password: i.Password}
		})
		c.login(ctx, i.Email, i.Password)
	}
}

// edit applies a field edit. Editing while Errored returns to Idle with
// the edit applied; edits during Authenticating are ignored.
func (c *Container) edit(apply func(Idle) Idle) {
	c.UpdateState(func(s State) State {
		switch s := s.(type) {
		case Idle:
			s.FieldError = ""
			return apply(s)
		case Errored:
			return apply(Idle{Email: s.Email, Password: s.Password})
		default:
			return s
		}
	})
}

// submit validates the form and starts the login call. Only valid from
// Idle: a second submit while authenticating is a no-op.
func (c *Container) submit(ctx context.Context) {
	store.With(c.Store, func(s Idle) {
		if err := s.Email.Validate(); err != nil {
			c.fail(err)
			return
		}
		if s.Password.Raw == "" {
			c.fail(errors.FieldRequired("Password"))
			return
		}
		c.UpdateState(func(State) State {
			return Authenticating{Email: s.Email, Password: s.Password}
		})
		c.login(ctx, s.Email, s.Password)
	})
}

func (c *Container) fail(err error) {
	c.UpdateState(func(s State) State {
		if idle, ok := s.(Idle); ok {
			idle.FieldError = errors.UserMessage(err)
			return idle
		}
		return s
	})
}

// login performs the use-case call. The reducer is suspended here; queued
// intents wait until the call resolves.
func (c *Container) login(ctx context.Context, email field.Email, password field.Password) {
	user, err := c.auth.Login(ctx, email.Raw, password.Raw)
	if err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(State) State {
			return Errored{
				Email:    email,
				Password: password,
				Cause:    err,
				Retry:    replay{Email: email, Password: password},
			}
		})
		return
	}
	c.Emit(LoggedIn{User: user})
}
