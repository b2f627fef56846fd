// Package passwordreset holds the two password-recovery screens: the
// forgot-password form that requests a reset code, and the new-password
// form that redeems it.
package passwordreset

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/field"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// Resetter is the injected use-case pair.
type Resetter interface {
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, code, password string) error
}

// =============================================================================
// Forgot-password screen
// =============================================================================

// ForgotState is the sealed state set for the forgot-password screen.
type ForgotState interface{ forgotState() }

// ForgotIdle is the editable email form.
type ForgotIdle struct {
	Email      field.Email
	FieldError string
}

// ForgotSending is the in-flight request.
type ForgotSending struct{ Email field.Email }

// ForgotErrored is a failed request with the intent to replay.
type ForgotErrored struct {
	Email field.Email
	Cause error
	Retry store.Intent
}

func (ForgotIdle) forgotState()    {}
func (ForgotSending) forgotState() {}
func (ForgotErrored) forgotState() {}

// Forgot-password intents.
type (
	UpdateForgotEmail struct{ Value string }
	SubmitForgot      struct{}
	RetryForgot       struct{}

	replayForgot struct{ Email field.Email }
)

// CodeSent is emitted when the server accepted the reset request; the app
// navigates to the new-password screen carrying the email.
type CodeSent struct{ Email string }

// ForgotContainer is the forgot-password screen container.
type ForgotContainer struct {
	*store.Store[ForgotState]
	resetter Resetter
}

// NewForgotContainer creates and starts the container.
func NewForgotContainer(r Resetter) *ForgotContainer {
	c := &ForgotContainer{
		Store:    store.New[ForgotState]("forgot-password", ForgotIdle{}),
		resetter: r,
	}
	c.Run(c.reduce)
	return c
}

func (c *ForgotContainer) reduce(ctx context.Context, i store.Intent) {
	switch i := i.(type) {
	case UpdateForgotEmail:
		c.UpdateState(func(s ForgotState) ForgotState {
			switch s := s.(type) {
			case ForgotIdle:
				return ForgotIdle{Email: field.NewEmail(i.Value)}
			case ForgotErrored:
				return ForgotIdle{Email: field.NewEmail(i.Value)}
			default:
				return s
			}
		})
	case SubmitForgot:
		store.With(c.Store, func(s ForgotIdle) {
			if err := s.Email.Validate(); err != nil {
				c.UpdateState(func(ForgotState) ForgotState {
					return ForgotIdle{Email: s.Email, FieldError: errors.UserMessage(err)}
				})
				return
			}
			c.UpdateState(func(ForgotState) ForgotState { return ForgotSending{Email: s.Email} })
			c.send(ctx, s.Email)
		})
	case RetryForgot:
		store.With(c.Store, func(s ForgotErrored) {
			c.UpdateState(func(ForgotState) ForgotState { return ForgotSending{Email: s.Email} })
			c.Dispatch(s.Retry)
		})
	case replayForgot:
		c.UpdateState(func(ForgotState) ForgotState { return ForgotSending{Email: i.Email} })
		c.send(ctx, i.Email)
	}
}

func (c *ForgotContainer) send(ctx context.Context, email field.Email) {
	if err := c.resetter.RequestPasswordReset(ctx, email.Raw); err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(ForgotState) ForgotState {
			return ForgotErrored{Email: email, Cause: err, Retry: replayForgot{Email: email}}
		})
		return
	}
	c.Emit(CodeSent{Email: email.Raw})
}

// =============================================================================
// New-password screen
// =============================================================================

// ResetState is the sealed state set for the new-password screen.
type ResetState interface{ resetState() }

// ResetIdle is the editable form: the mailed code plus the new password
// and its confirmation.
type ResetIdle struct {
	Code         string
	Password     field.Password
	Confirmation string
	FieldError   string
}

// ResetSubmitting is the in-flight reset call.
type ResetSubmitting struct {
	Code     string
	Password field.Password
}

// ResetErrored is a failed reset with the intent to replay.
type ResetErrored struct {
	Code     string
	Password field.Password
	Cause    error
	Retry    store.Intent
}

func (ResetIdle) resetState()       {}
func (ResetSubmitting) resetState() {}
func (ResetErrored) resetState()    {}

// New-password intents.
type (
	UpdateCode         struct{ Value string }
	UpdateNewPassword  struct{ Value string }
	UpdateConfirmation struct{ Value string }
	SubmitReset        struct{}
	RetryReset         struct{}

	replayReset struct {
		Code     string
		Password field.Password
	}
)

// PasswordChanged is emitted once the new password is set; the app returns
// to the sign-in screen.
type PasswordChanged struct{}

// ResetContainer is the new-password screen container.
type ResetContainer struct {
	*store.Store[ResetState]
	resetter Resetter
}

// NewResetContainer creates and starts the container.
func NewResetContainer(r Resetter) *ResetContainer {
	c := &ResetContainer{
		Store:    store.New[ResetState]("new-password", ResetIdle{}),
		resetter: r,
	}
	c.Run(c.reduce)
	return c
}

func (c *ResetContainer) reduce(ctx context.Context, i store.Intent) {
	switch i := i.(type) {
	case UpdateCode:
		c.edit(func(s ResetIdle) ResetIdle { s.Code = i.Value; return s })
	case UpdateNewPassword:
		c.edit(func(s ResetIdle) ResetIdle { s.Password = field.NewPassword(i.Value); return s })
	case UpdateConfirmation:
		c.edit(func(s ResetIdle) ResetIdle { s.Confirmation = i.Value; return s })
	case SubmitReset:
		store.With(c.Store, func(s ResetIdle) {
			if s.Code == "" {
				c.fail(errors.FieldRequired("Reset code"))
				return
			}
			// The new password must pass the policy and match its
			// confirmation exactly; the mismatch error is distinct.
			if err := s.Password.ValidateConfirmation(s.Confirmation); err != nil {
				c.fail(err)
				return
			}
			c.UpdateState(func(ResetState) ResetState {
				return ResetSubmitting{Code: s.Code, Password: s.Password}
			})
			c.submit(ctx, s.Code, s.Password)
		})
	case RetryReset:
		store.With(c.Store, func(s ResetErrored) {
			c.UpdateState(func(ResetState) ResetState {
				return ResetSubmitting{Code: s.Code, Password: s.Password}
			})
			c.Dispatch(s.Retry)
		})
	case replayReset:
		c.UpdateState(func(ResetState) ResetState {
			return ResetSubmitting{Code: i.Code, Password: i.Password}
		})
		c.submit(ctx, i.Code, i.Password)
	}
}

func (c *ResetContainer) edit(apply func(ResetIdle) ResetIdle) {
	c.UpdateState(func(s ResetState) ResetState {
		switch s := s.(type) {
		case ResetIdle:
			s.FieldError = ""
			return apply(s)
		case ResetErrored:
			return apply(ResetIdle{Code: s.Code, Password: s.Password})
		default:
			return s
		}
	})
}

func (c *ResetContainer) fail(err error) {
	c.UpdateState(func(s ResetState) ResetState {
		if idle, ok := s.(ResetIdle); ok {
			idle.FieldError = errors.UserMessage(err)
			return idle
		}
		return s
	})
}

func (c *ResetContainer) submit(ctx context.Context, code string, password field.Password) {
	if err := c.resetter.ResetPassword(ctx, code, password.Raw); err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(ResetState) ResetState {
			return ResetErrored{
				Code:     code,
				Password: password,
				Cause:    err,
				Retry:    replayReset{Code: code, Password: password},
			}
		})
		return
	}
	c.Emit(PasswordChanged{})
}
