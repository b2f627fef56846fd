// Package sessions holds the device-sessions screen: listing the sessions
// that hold valid tokens and revoking them.
package sessions

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// State is the sealed state set for the sessions screen.
type State interface{ sessionsState() }

type (
	// Loading fetches the session list.
	Loading struct{}
	// Ready shows the sessions. Revoking holds the ID of an in-flight
	// revocation so the row can show a spinner while the rest of the
	// list stays interactive.
	Ready struct {
		Sessions []api.Session
		Revoking string
	}
	// Errored is a failed fetch or revocation with the intent to replay.
	Errored struct {
		Sessions []api.Session
		Cause    error
		Retry    store.Intent
	}
)

func (Loading) sessionsState() {}
func (Ready) sessionsState()   {}
func (Errored) sessionsState() {}

// Intents.
type (
	// Refresh reloads the session list.
	Refresh struct{}
	// Revoke invalidates one session.
	Revoke struct{ ID string }
	// RevokeOthers invalidates every session except the current one.
	RevokeOthers struct{}
	Retry        struct{}

	load         struct{}
	replayRevoke struct{ ID string }
	replayOthers struct{}
)

// Revoked is emitted after a successful revocation. Current is true when
// the revoked session was this device's own; the app signs out.
type Revoked struct {
	ID      string
	Current bool
}

// Manager is the injected use-case set.
type Manager interface {
	Sessions(ctx context.Context) ([]api.Session, error)
	RevokeSession(ctx context.Context, id string) error
	RevokeOtherSessions(ctx context.Context) error
}

// Container is the sessions screen container.
type Container struct {
	*store.Store[State]
	manager Manager
}

// NewContainer creates and starts the container; the list fetch begins
// immediately.
func NewContainer(m Manager) *Container {
	c := &Container{
		Store:   store.New[State]("sessions", Loading{}),
		manager: m,
	}
	c.Run(c.reduce)
	c.Dispatch(load{})
	return c
}

func (c *Container) reduce(ctx context.Context, i store.Intent) {
	switch i := i.(type) {
	case load, Refresh:
		c.UpdateState(func(State) State { return Loading{} })
		c.load(ctx)
	case Revoke:
		store.With(c.Store, func(s Ready) {
			if s.Revoking != "" {
				return // one revocation at a time
			}
			c.revoke(ctx, s, i.ID)
		})
	case RevokeOthers:
		store.With(c.Store, func(s Ready) {
			if s.Revoking != "" {
				return
			}
			c.revokeOthers(ctx, s)
		})
	case Retry:
		store.With(c.Store, func(s Errored) {
			c.Dispatch(s.Retry)
		})
	case replayRevoke:
		store.With(c.Store, func(s Errored) {
			c.revoke(ctx, Ready{Sessions: s.Sessions}, i.ID)
		})
	case replayOthers:
		store.With(c.Store, func(s Errored) {
			c.revokeOthers(ctx, Ready{Sessions: s.Sessions})
		})
	}
}

func (c *Container) load(ctx context.Context) {
	list, err := c.manager.Sessions(ctx)
	if err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(State) State {
			return Errored{Cause: err, Retry: load{}}
		})
		return
	}
	c.UpdateState(func(State) State { return Ready{Sessions: list} })
}

func (c *Container) revoke(ctx context.Context, from Ready, id string) {
	c.UpdateState(func(State) State {
		return Ready{Sessions: from.Sessions, Revoking: id}
	})

	if err := c.manager.RevokeSession(ctx, id); err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(State) State {
			return Errored{Sessions: from.Sessions, Cause: err, Retry: replayRevoke{ID: id}}
		})
		return
	}

	current := false
	kept := make([]api.Session, 0, len(from.Sessions))
	for _, s := range from.Sessions {
		if s.ID == id {
			current = s.Current
			continue
		}
		kept = append(kept, s)
	}
	c.UpdateState(func(State) State { return Ready{Sessions: kept} })
	c.Emit(Revoked{ID: id, Current: current})
}

func (c *Container) revokeOthers(ctx context.Context, from Ready) {
	c.UpdateState(func(State) State {
		return Ready{Sessions: from.Sessions, Revoking: "*"}
	})

	if err := c.manager.RevokeOtherSessions(ctx); err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(State) State {
			return Errored{Sessions: from.Sessions, Cause: err, Retry: replayOthers{}}
		})
		return
	}

	kept := make([]api.Session, 0, 1)
	for _, s := range from.Sessions {
		if s.Current {
			kept = append(kept, s)
		}
	}
	c.UpdateState(func(State) State { return Ready{Sessions: kept} })
	c.Emit(Revoked{ID: "*", Current: false})
}
