package register

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
)

type fakeRegistrar struct {
	mu    sync.Mutex
	calls int
	user  api.User
	err   error
}

func (f *fakeRegistrar) Register(ctx context.Context, name, email, password string) (api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.user, f.err
}

func (f *fakeRegistrar) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func fillValidForm(c *Container) {
	c.Dispatch(UpdateName{Value: "Ada"})
	c.Dispatch(UpdateEmail{Value: "ada@example.com"})
	c.Dispatch(UpdatePassword{Value: "Secret123!"})
	c.Dispatch(UpdateConfirmation{Value: "Secret123!"})
}

func TestRegisterSuccess(t *testing.T) {
	reg := &fakeRegistrar{user: api.User{ID: "u1"}}
	c := NewContainer(reg)
	defer c.Close()

	fillValidForm(c)
	c.Dispatch(Submit{})

	select {
	case a := <-c.Actions():
		if _, ok := a.(Registered); !ok {
			t.Fatalf("expected Registered action, got %T", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no action emitted")
	}
}

func TestPasswordMismatchBlocksSubmit(t *testing.T) {
	reg := &fakeRegistrar{}
	c := NewContainer(reg)
	defer c.Close()

	c.Dispatch(UpdateName{Value: "Ada"})
	c.Dispatch(UpdateEmail{Value: "ada@example.com"})
	c.Dispatch(UpdatePassword{Value: "Secret123!"})
	c.Dispatch(UpdateConfirmation{Value: "Secret123?"})
	c.Dispatch(Submit{})

	waitFor(t, func() bool {
		idle, ok := c.State().(Idle)
		return ok && idle.FieldError == "Passwords do not match."
	})
	if reg.callCount() != 0 {
		t.Error("mismatched confirmation must not reach the server")
	}
}

func TestWeakPasswordDistinctFromMismatch(t *testing.T) {
	reg := &fakeRegistrar{}
	c := NewContainer(reg)
	defer c.Close()

	c.Dispatch(UpdateName{Value: "Ada"})
	c.Dispatch(UpdateEmail{Value: "ada@example.com"})
	c.Dispatch(UpdatePassword{Value: "weak"})
	c.Dispatch(UpdateConfirmation{Value: "weak"})
	c.Dispatch(Submit{})

	waitFor(t, func() bool {
		idle, ok := c.State().(Idle)
		return ok && idle.FieldError != ""
	})
	if c.State().(Idle).FieldError == "Passwords do not match." {
		t.Error("weak password reported as mismatch")
	}
}

func TestServerConflictBecomesErroredWithRetry(t *testing.T) {
	reg := &fakeRegistrar{err: errors.E(errors.Op("api.Register"), errors.KindConflict, "Email already registered.")}
	c := NewContainer(reg)
	defer c.Close()

	fillValidForm(c)
	c.Dispatch(Submit{})

	waitFor(t, func() bool {
		_, ok := c.State().(Errored)
		return ok
	})
	errored := c.State().(Errored)
	if errors.UserMessage(errored.Cause) != "Email already registered." {
		t.Errorf("unexpected cause: %v", errored.Cause)
	}

	c.Dispatch(Retry{})
	waitFor(t, func() bool { return reg.callCount() == 2 })
}

func TestEditAfterErrorRequiresReconfirmation(t *testing.T) {
	reg := &fakeRegistrar{err: errors.E(errors.Op("api.Register"), errors.KindConflict, "Email already registered.")}
	c := NewContainer(reg)
	defer c.Close()

	fillValidForm(c)
	c.Dispatch(Submit{})
	waitFor(t, func() bool {
		_, ok := c.State().(Errored)
		return ok
	})

	c.Dispatch(UpdateEmail{Value: "ada2@example.com"})
	waitFor(t, func() bool {
		_, ok := c.State().(Idle)
		return ok
	})
	idle := c.State().(Idle)
	if idle.Confirmation != "" {
		t.Error("confirmation should be cleared after a failed attempt")
	}
	if idle.Name.Raw != "Ada" || idle.Password.Raw != "Secret123!" {
		t.Error("other fields should be threaded through the transition")
	}
}
