package sessions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
)

type fakeManager struct {
	mu          sync.Mutex
	sessions    []api.Session
	listErr     error
	revokeCalls []string
	revokeErr   error
	othersCalls int
}

func (f *fakeManager) Sessions(ctx context.Context) ([]api.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions, f.listErr
}

func (f *fakeManager) RevokeSession(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokeCalls = append(f.revokeCalls, id)
	return f.revokeErr
}

func (f *fakeManager) RevokeOtherSessions(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.othersCalls++
	return f.revokeErr
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

func twoSessions() []api.Session {
	return []api.Session{
		{ID: "s1", Device: "laptop", Current: true},
		{ID: "s2", Device: "phone"},
	}
}

func TestRevokeRemovesSessionAndEmits(t *testing.T) {
	f := &fakeManager{sessions: twoSessions()}
	c := NewContainer(f)
	defer c.Close()

	waitFor(t, func() bool {
		s, ok := c.State().(Ready)
		return ok && len(s.Sessions) == 2
	})

	c.Dispatch(Revoke{ID: "s2"})
	select {
	case a := <-c.Actions():
		r, ok := a.(Revoked)
		if !ok || r.ID != "s2" || r.Current {
			t.Fatalf("expected Revoked for s2, got %#v", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no action emitted")
	}

	s := c.State().(Ready)
	if len(s.Sessions) != 1 || s.Sessions[0].ID != "s1" {
		t.Errorf("revoked session still listed: %+v", s.Sessions)
	}
}

func TestRevokeCurrentSessionFlagsSignOut(t *testing.T) {
	f := &fakeManager{sessions: twoSessions()}
	c := NewContainer(f)
	defer c.Close()

	waitFor(t, func() bool {
		_, ok := c.State().(Ready)
		return ok
	})

	c.Dispatch(Revoke{ID: "s1"})
	select {
	case a := <-c.Actions():
		r, ok := a.(Revoked)
		if !ok || !r.Current {
			t.Fatalf("expected Revoked with Current, got %#v", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no action emitted")
	}
}

func TestRevokeOthersKeepsOnlyCurrent(t *testing.T) {
	f := &fakeManager{sessions: twoSessions()}
	c := NewContainer(f)
	defer c.Close()

	waitFor(t, func() bool {
		_, ok := c.State().(Ready)
		return ok
	})

	c.Dispatch(RevokeOthers{})
	waitFor(t, func() bool {
		s, ok := c.State().(Ready)
		return ok && len(s.Sessions) == 1 && s.Sessions[0].Current
	})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.othersCalls != 1 {
		t.Errorf("expected one revoke-others call, got %d", f.othersCalls)
	}
}

func TestRevokeFailureRetriesSameSession(t *testing.T) {
	f := &fakeManager{
		sessions:  twoSessions(),
		revokeErr: errors.E(errors.Op("api.RevokeSession"), errors.KindNetwork, context.DeadlineExceeded),
	}
	c := NewContainer(f)
	defer c.Close()

	waitFor(t, func() bool {
		_, ok := c.State().(Ready)
		return ok
	})
	c.Dispatch(Revoke{ID: "s2"})
	waitFor(t, func() bool {
		_, ok := c.State().(Errored)
		return ok
	})

	f.mu.Lock()
	f.revokeErr = nil
	f.mu.Unlock()

	c.Dispatch(Retry{})
	waitFor(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.revokeCalls) == 2
	})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revokeCalls[0] != "s2" || f.revokeCalls[1] != "s2" {
		t.Errorf("retry did not replay the same revocation: %v", f.revokeCalls)
	}
}

func TestConcurrentRevokeIsIgnored(t *testing.T) {
	f := &fakeManager{sessions: twoSessions()}
	c := NewContainer(f)
	defer c.Close()

	waitFor(t, func() bool {
		_, ok := c.State().(Ready)
		return ok
	})

	// Two rapid revocations: only the first may reach the server, the
	// second arrives while the first is marked in flight.
	c.UpdateState(func(s State) State {
		r := s.(Ready)
		r.Revoking = "s2"
		return r
	})
	c.Dispatch(Revoke{ID: "s1"})

	time.Sleep(50 * time.Millisecond)
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.revokeCalls) != 0 {
		t.Errorf("revoke during an in-flight revocation must be ignored: %v", f.revokeCalls)
	}
}
