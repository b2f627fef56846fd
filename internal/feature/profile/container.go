// Package profile holds the account screen: editing the display name and
// language, changing the password, and verifying the account email.
package profile

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/field"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// State is the sealed state set for the profile screen.
type State interface{ profileState() }

// Loading fetches the account.
type Loading struct{}

// Ready is the editable profile form. Notice carries transient feedback
// such as "Verification email sent."
type Ready struct {
	User        api.User
	DisplayName field.Name
	Language    string
	FieldError  string
	Notice      string
}

// Saving is an in-flight profile update.
type Saving struct {
	User   api.User
	Update api.ProfileUpdate
}

// Errored is a failed load or save with the intent to replay.
type Errored struct {
	User  api.User
	Cause error
	Retry store.Intent
}

func (Loading) profileState() {}
func (Ready) profileState()   {}
func (Saving) profileState()  {}
func (Errored) profileState() {}

// Intents.
type (
	UpdateDisplayName struct{ Value string }
	UpdateLanguage    struct{ Value string }
	Save              struct{}
	Retry             struct{}

	// SendVerification re-sends the verification mail.
	SendVerification struct{}
	// SubmitVerificationCode redeems a mailed verification code.
	SubmitVerificationCode struct{ Code string }

	load       struct{}
	replaySave struct {
		User   api.User
		Update api.ProfileUpdate
	}
)

// Saved is emitted after a successful profile update.
type Saved struct{ User api.User }

// EmailVerified is emitted once the account email is confirmed.
type EmailVerified struct{}

// Accounts is the injected use-case set.
type Accounts interface {
	CurrentUser(ctx context.Context) (api.User, error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (api.User, error)
	SendVerificationEmail(ctx context.Context) error
	VerifyEmail(ctx context.Context, code string) error
}

// Container is the profile screen container.
type Container struct {
	*store.Store[State]
	accounts Accounts
}

// NewContainer creates and starts the container; the account load begins
// immediately.
func NewContainer(a Accounts) *Container {
	c := &Container{
		Store:    store.New[State]("profile", Loading{}),
		accounts: a,
	}
	c.Run(c.reduce)
	c.Dispatch(load{})
	return c
}

func (c *Container) reduce(ctx context.Context, i store.Intent) {
	switch i := i.(type) {
	case load:
		c.load(ctx)
	case UpdateDisplayName:
		c.edit(func(s Ready) Ready {
			s.DisplayName = field.NewName(i.Value)
			s.FieldError = ""
			s.Notice = ""
			return s
		})
	case UpdateLanguage:
		c.edit(func(s Ready) Ready {
			s.Language = i.Value
			s.FieldError = ""
			s.Notice = ""
			return s
		})
	case Save:
		store.With(c.Store, func(s Ready) {
			if err := s.DisplayName.Validate(); err != nil {
				c.edit(func(s Ready) Ready {
					s.FieldError = errors.UserMessage(err)
					return s
				})
				return
			}
			update := api.ProfileUpdate{DisplayName: s.DisplayName.Raw, Language: s.Language}
			c.UpdateState(func(State) State { return Saving{User: s.User, Update: update} })
			c.save(ctx, s.User, update)
		})
	case Retry:
		store.With(c.Store, func(s Errored) {
			c.Dispatch(s.Retry)
		})
	case replaySave:
		store.With(c.Store, func(s Errored) {
			c.UpdateState(func(State) State { return Saving{User: i.User, Update: i.Update} })
			c.save(ctx, i.User, i.Update)
		})
	case SendVerification:
		store.With(c.Store, func(s Ready) {
			if err := c.accounts.SendVerificationEmail(ctx); err != nil {
				if errors.Is(err, errors.KindCancelled) {
					return
				}
				c.edit(func(s Ready) Ready {
					s.FieldError = errors.UserMessage(err)
					return s
				})
				return
			}
			c.edit(func(s Ready) Ready {
				s.Notice = "Verification email sent."
				return s
			})
		})
	case SubmitVerificationCode:
		store.With(c.Store, func(s Ready) {
			if i.Code == "" {
				c.edit(func(s Ready) Ready {
					s.FieldError = errors.UserMessage(errors.FieldRequired("Verification code"))
					return s
				})
				return
			}
			if err := c.accounts.VerifyEmail(ctx, i.Code); err != nil {
				if errors.Is(err, errors.KindCancelled) {
					return
				}
				c.edit(func(s Ready) Ready {
					s.FieldError = errors.UserMessage(err)
					return s
				})
				return
			}
			c.Emit(EmailVerified{})
			c.load(ctx)
		})
	}
}

func (c *Container) edit(apply func(Ready) Ready) {
	c.UpdateState(func(s State) State {
		if r, ok := s.(Ready); ok {
			return apply(r)
		}
		return s
	})
}

func ready(user api.User) Ready {
	return Ready{
		User:        user,
		DisplayName: field.NewName(user.DisplayName),
		Language:    user.Language,
	}
}

func (c *Container) load(ctx context.Context) {
	user, err := c.accounts.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(State) State {
			return Errored{Cause: err, Retry: load{}}
		})
		return
	}
	c.UpdateState(func(State) State { return ready(user) })
}

func (c *Container) save(ctx context.Context, user api.User, update api.ProfileUpdate) {
	updated, err := c.accounts.UpdateProfile(ctx, update)
	if err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(State) State {
			return Errored{
				User:  user,
				Cause: err,
				Retry: replaySave{User: user, Update: update},
			}
		})
		return
	}
	c.UpdateState(func(State) State { return ready(updated) })
	c.Emit(Saved{User: updated})
}
