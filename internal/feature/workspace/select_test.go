package workspace

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
)

type fakeLister struct {
	mu        sync.Mutex
	tenants   []api.Tenant
	listErr   error
	activated []string
}

func (f *fakeLister) List(ctx context.Context) ([]api.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tenants, f.listErr
}

func (f *fakeLister) Activate(t api.Tenant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, t.ID)
}

func TestChooseActivatesAndEmits(t *testing.T) {
	f := &fakeLister{tenants: []api.Tenant{{ID: "t1", Name: "Acme"}, {ID: "t2", Name: "Beta"}}}
	c := NewSelectContainer(f)
	defer c.Close()

	waitFor(t, func() bool {
		s, ok := c.State().(SelectReady)
		return ok && len(s.Tenants) == 2
	})

	c.Dispatch(Choose{Tenant: f.tenants[1]})
	select {
	case a := <-c.Actions():
		act, ok := a.(Activated)
		if !ok || act.Tenant.ID != "t2" {
			t.Fatalf("expected Activated for t2, got %#v", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no action emitted")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.activated) != 1 || f.activated[0] != "t2" {
		t.Errorf("unexpected activations: %v", f.activated)
	}
}

func TestEmptyListEmitsNoneAvailable(t *testing.T) {
	f := &fakeLister{}
	c := NewSelectContainer(f)
	defer c.Close()

	select {
	case a := <-c.Actions():
		if _, ok := a.(NoneAvailable); !ok {
			t.Fatalf("expected NoneAvailable, got %#v", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no action emitted")
	}
}

func TestListFailureRetries(t *testing.T) {
	f := &fakeLister{listErr: errors.E(errors.Op("api.Tenants"), errors.KindNetwork, context.DeadlineExceeded)}
	c := NewSelectContainer(f)
	defer c.Close()

	waitFor(t, func() bool {
		_, ok := c.State().(SelectErrored)
		return ok
	})

	f.mu.Lock()
	f.listErr = nil
	f.tenants = []api.Tenant{{ID: "t1"}}
	f.mu.Unlock()

	c.Dispatch(RetrySelect{})
	waitFor(t, func() bool {
		s, ok := c.State().(SelectReady)
		return ok && len(s.Tenants) == 1
	})
}
