package serverconn

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
)

type fakeProber struct {
	mu    sync.Mutex
	calls []string
	info  api.ServerInfo
	err   error
}

func (f *fakeProber) Probe(ctx context.Context, baseURL string) (api.ServerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, baseURL)
	return f.info, f.err
}

func (f *fakeProber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
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

func TestHostWithSpacesMakesNoNetworkCall(t *testing.T) {
	p := &fakeProber{}
	c := NewContainer(p, "", "")
	defer c.Close()

	c.Dispatch(UpdateHost{Value: "10 0 0 1"})
	c.Dispatch(UpdatePort{Value: "8080"})
	c.Dispatch(Validate{})

	waitFor(t, func() bool {
		in, ok := c.State().(Input)
		return ok && in.HostError != ""
	})
	in := c.State().(Input)
	if in.HostError != "Host must not contain spaces." {
		t.Errorf("unexpected host error: %q", in.HostError)
	}
	if p.callCount() != 0 {
		t.Error("no network call may happen on local validation failure")
	}
}

func TestBlankHostIsRequiredError(t *testing.T) {
	p := &fakeProber{}
	c := NewContainer(p, "", "8080")
	defer c.Close()

	c.Dispatch(Validate{})

	waitFor(t, func() bool {
		in, ok := c.State().(Input)
		return ok && in.HostError != ""
	})
	if got := c.State().(Input).HostError; got != "Host is required." {
		t.Errorf("blank host should give the required-field error, got %q", got)
	}
}

func TestPortBoundaries(t *testing.T) {
	cases := []struct {
		port string
		ok   bool
	}{
		{"1", true},
		{"65535", true},
		{"0", false},
		{"65536", false},
	}
	for _, tc := range cases {
		p := &fakeProber{info: api.ServerInfo{Name: "srv"}}
		c := NewContainer(p, "10.0.0.1", tc.port)

		c.Dispatch(Validate{})
		if tc.ok {
			waitFor(t, func() bool {
				_, isConfirm := c.State().(Confirm)
				return isConfirm
			})
		} else {
			waitFor(t, func() bool {
				in, isInput := c.State().(Input)
				return isInput && in.PortError != ""
			})
			if p.callCount() != 0 {
				t.Errorf("port %s: no network call may happen", tc.port)
			}
		}
		c.Close()
	}
}

func TestValidateThenAcceptEmitsConnected(t *testing.T) {
	p := &fakeProber{info: api.ServerInfo{Name: "acme books", Edition: "self-hosted"}}
	c := NewContainer(p, "books.example.com", "443")
	defer c.Close()

	c.Dispatch(Validate{})
	waitFor(t, func() bool {
		_, ok := c.State().(Confirm)
		return ok
	})

	confirm := c.State().(Confirm)
	if confirm.BaseURL != "https://books.example.com:443" {
		t.Errorf("unexpected base URL: %s", confirm.BaseURL)
	}

	c.Dispatch(Accept{})
	select {
	case a := <-c.Actions():
		conn, ok := a.(Connected)
		if !ok || conn.Info.Name != "acme books" {
			t.Fatalf("expected Connected, got %#v", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no action emitted")
	}
}

func TestBackFromConfirmRestoresForm(t *testing.T) {
	p := &fakeProber{info: api.ServerInfo{Name: "srv"}}
	c := NewContainer(p, "books.example.com", "443")
	defer c.Close()

	c.Dispatch(Validate{})
	waitFor(t, func() bool {
		_, ok := c.State().(Confirm)
		return ok
	})
	c.Dispatch(Back{})
	waitFor(t, func() bool {
		_, ok := c.State().(Input)
		return ok
	})
	in := c.State().(Input)
	if in.Host.Raw != "books.example.com" || in.Port.Raw != "443" {
		t.Errorf("form values lost: %+v", in)
	}
}

func TestUnreachableServerErroredWithRetry(t *testing.T) {
	p := &fakeProber{err: errors.ServerUnreachable("10.0.0.1", context.DeadlineExceeded)}
	c := NewContainer(p, "10.0.0.1", "8080")
	defer c.Close()

	c.Dispatch(Validate{})
	waitFor(t, func() bool {
		_, ok := c.State().(Errored)
		return ok
	})

	p.mu.Lock()
	p.err = nil
	p.info = api.ServerInfo{Name: "srv"}
	p.mu.Unlock()

	c.Dispatch(Retry{})
	waitFor(t, func() bool {
		_, ok := c.State().(Confirm)
		return ok
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) != 2 || p.calls[0] != p.calls[1] {
		t.Errorf("retry should replay the identical probe: %v", p.calls)
	}
}

func TestUseCloudProbesHostedEndpoint(t *testing.T) {
	p := &fakeProber{info: api.ServerInfo{Name: "ledgerdesk cloud", Edition: "cloud"}}
	c := NewContainer(p, "", "")
	defer c.Close()

	c.Dispatch(UseCloud{})
	waitFor(t, func() bool {
		_, ok := c.State().(Confirm)
		return ok
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) != 1 || p.calls[0] != api.CloudBaseURL {
		t.Errorf("expected probe of %s, got %v", api.CloudBaseURL, p.calls)
	}
}
