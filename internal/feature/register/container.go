// Package register holds the account-creation screen's state machine.
package register

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/field"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// State is the sealed state set for the registration screen.
type State interface{ registerState() }

// Idle is the editable form.
type Idle struct {
	Name         field.Name
	Email        field.Email
	Password     field.Password
	Confirmation string
	FieldError   string
}

// Submitting is the in-flight register call.
type Submitting struct {
	Name     field.Name
	Email    field.Email
	Password field.Password
}

// Errored is a failed registration with the intent to replay.
type Errored struct {
	Name     field.Name
	Email    field.Email
	Password field.Password
	Cause    error
	Retry    store.Intent
}

func (Idle) registerState()       {}
func (Submitting) registerState() {}
func (Errored) registerState()    {}

// Intents.
type (
	UpdateName         struct{ Value string }
	UpdateEmail        struct{ Value string }
	UpdatePassword     struct{ Value string }
	UpdateConfirmation struct{ Value string }
	Submit             struct{}
	Retry              struct{}

	replay struct {
		Name     field.Name
		Email    field.Email
		Password field.Password
	}
)

// Registered is emitted once on success.
type Registered struct{ User api.User }

// Registrar is the injected use-case.
type Registrar interface {
	Register(ctx context.Context, name, email, password string) (api.User, error)
}

// Container is the registration screen container.
type Container struct {
	*store.Store[State]
	registrar Registrar
}

// NewContainer creates and starts the container.
func NewContainer(r Registrar) *Container {
	c := &Container{
		Store:     store.New[State]("register", Idle{}),
		registrar: r,
	}
	c.Run(c.reduce)
	return c
}

func (c *Container) reduce(ctx context.Context, i store.Intent) {
	switch i := i.(type) {
	case UpdateName:
		c.edit(func(s Idle) Idle { s.Name = field.NewName(i.Value); return s })
	case UpdateEmail:
		c.edit(func(s Idle) Idle { s.Email = field.NewEmail(i.Value); return s })
	case UpdatePassword:
		c.edit(func(s Idle) Idle { s.Password = field.NewPassword(i.Value); return s })
	case UpdateConfirmation:
		c.edit(func(s Idle) Idle { s.Confirmation = i.Value; return s })
	case Submit:
		c.submit(ctx)
	case Retry:
		store.With(c.Store, func(s Errored) {
			c.UpdateState(func(State) State {
				return Submitting{Name: s.Name, Email: s.Email, Password: s.Password}
			})
			c.Dispatch(s.Retry)
		})
	case replay:
		c.UpdateState(func(State) State {
			return Submitting{Name: i.Name, Email: i.Email, Password: i.Password}
		})
		c.register(ctx, i.Name, i.Email, i.Password)
	}
}

func (c *Container) edit(apply func(Idle) Idle) {
	c.UpdateState(func(s State) State {
		switch s := s.(type) {
		case Idle:
			s.FieldError = ""
			return apply(s)
		case Errored:
			// The confirmation is intentionally not restored: after a
			// failed attempt the user re-confirms the password.
			return apply(Idle{Name: s.Name, Email: s.Email, Password: s.Password})
		default:
			return s
		}
	})
}

func (c *Container) submit(ctx context.Context) {
	store.With(c.Store, func(s Idle) {
		if err := s.Name.Validate(); err != nil {
			c.fail(err)
			return
		}
		if err := s.Email.Validate(); err != nil {
			c.fail(err)
			return
		}
		if err := s.Password.ValidateConfirmation(s.Confirmation); err != nil {
			c.fail(err)
			return
		}
		c.UpdateState(func(State) State {
			return Submitting{Name: s.Name, Email: s.Email, Password: s.Password}
		})
		c.register(ctx, s.Name, s.Email, s.Password)
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

func (c *Container) register(ctx context.Context, name field.Name, email field.Email, password field.Password) {
	user, err := c.registrar.Register(ctx, name.Raw, email.Raw, password.Raw)
	if err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(State) State {
			return Errored{
				Name:     name,
				Email:    email,
				Password: password,
				Cause:    err,
				Retry:    replay{Name: name, Email: email, Password: password},
			}
		})
		return
	}
	c.Emit(Registered{User: user})
}
