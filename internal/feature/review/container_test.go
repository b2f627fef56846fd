package review

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
)

type fakeQueue struct {
	mu          sync.Mutex
	documents   []api.Document
	pendingErr  error
	decideCalls []api.Decision
	decideErr   error
}

func (f *fakeQueue) Pending(ctx context.Context) ([]api.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.documents, f.pendingErr
}

func (f *fakeQueue) Decide(ctx context.Context, d api.Decision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decideCalls = append(f.decideCalls, d)
	return f.decideErr
}

func (f *fakeQueue) decided() []api.Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Decision(nil), f.decideCalls...)
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

func queueOf(ids ...string) []api.Document {
	docs := make([]api.Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, api.Document{ID: id, Kind: "invoice", Status: api.DocumentPending})
	}
	return docs
}

func newReady(t *testing.T, f *fakeQueue) *Container {
	t.Helper()
	c := NewContainer(f)
	t.Cleanup(c.Close)
	waitFor(t, func() bool {
		_, ok := c.State().(Ready)
		return ok
	})
	return c
}

func TestApproveRemovesDocumentAndEmits(t *testing.T) {
	f := &fakeQueue{documents: queueOf("d1", "d2")}
	c := newReady(t, f)

	c.Dispatch(Approve{DocumentID: "d1"})
	select {
	case a := <-c.Actions():
		d, ok := a.(Decided)
		if !ok || d.DocumentID != "d1" || d.Verdict != api.VerdictApprove {
			t.Fatalf("expected approval of d1, got %#v", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no action emitted")
	}

	s := c.State().(Ready)
	if len(s.Documents) != 1 || s.Documents[0].ID != "d2" {
		t.Errorf("decided document still queued: %+v", s.Documents)
	}
	calls := f.decided()
	if len(calls) != 1 || calls[0].IdempotencyKey == "" {
		t.Errorf("decision must carry an idempotency key: %+v", calls)
	}
}

func TestRejectWithoutNoteStaysLocal(t *testing.T) {
	f := &fakeQueue{documents: queueOf("d1")}
	c := newReady(t, f)

	c.Dispatch(Reject{DocumentID: "d1"})
	waitFor(t, func() bool {
		s, ok := c.State().(Ready)
		return ok && s.FieldError != ""
	})
	if len(f.decided()) != 0 {
		t.Error("rejection without a note must not reach the server")
	}
}

func TestRejectCarriesNote(t *testing.T) {
	f := &fakeQueue{documents: queueOf("d1")}
	c := newReady(t, f)

	c.Dispatch(Reject{DocumentID: "d1", Note: "duplicate of d0"})
	waitFor(t, func() bool { return len(f.decided()) == 1 })
	call := f.decided()[0]
	if call.Verdict != api.VerdictReject || call.Note != "duplicate of d0" {
		t.Errorf("unexpected decision: %+v", call)
	}
}

func TestDecideFailureRetriesIdenticalDecision(t *testing.T) {
	f := &fakeQueue{
		documents: queueOf("d1"),
		decideErr: errors.E(errors.Op("api.DecideDocument"), errors.KindNetwork, context.DeadlineExceeded),
	}
	c := newReady(t, f)

	c.Dispatch(Approve{DocumentID: "d1"})
	waitFor(t, func() bool {
		_, ok := c.State().(Errored)
		return ok
	})

	f.mu.Lock()
	f.decideErr = nil
	f.mu.Unlock()

	c.Dispatch(Retry{})
	waitFor(t, func() bool { return len(f.decided()) == 2 })
	calls := f.decided()
	if calls[0].IdempotencyKey != calls[1].IdempotencyKey {
		t.Error("retry must replay the identical decision, including the idempotency key")
	}
}

func TestDoubleApproveMakesOneCall(t *testing.T) {
	block := make(chan struct{})
	f := &blockingQueue{fakeQueue: fakeQueue{documents: queueOf("d1")}, release: block}
	c := NewContainer(f)
	defer c.Close()
	waitFor(t, func() bool {
		_, ok := c.State().(Ready)
		return ok
	})

	c.Dispatch(Approve{DocumentID: "d1"})
	c.Dispatch(Approve{DocumentID: "d1"})
	close(block)

	waitFor(t, func() bool { return len(f.decided()) >= 1 })
	time.Sleep(50 * time.Millisecond)
	if got := len(f.decided()); got != 1 {
		t.Errorf("expected exactly one decide call, got %d", got)
	}
}

type blockingQueue struct {
	fakeQueue
	release chan struct{}
}

func (b *blockingQueue) Decide(ctx context.Context, d api.Decision) error {
	<-b.release
	return b.fakeQueue.Decide(ctx, d)
}

func TestEventStreamUpdatesQueue(t *testing.T) {
	f := &fakeQueue{documents: queueOf("d1")}
	c := newReady(t, f)

	c.Dispatch(Queued{Document: api.Document{ID: "d2", Kind: "receipt"}})
	waitFor(t, func() bool {
		s, ok := c.State().(Ready)
		return ok && len(s.Documents) == 2
	})

	// The same push delivered twice must not duplicate the row.
	c.Dispatch(Queued{Document: api.Document{ID: "d2", Kind: "receipt"}})
	c.Dispatch(DecidedElsewhere{DocumentID: "d1"})
	waitFor(t, func() bool {
		s, ok := c.State().(Ready)
		return ok && len(s.Documents) == 1 && s.Documents[0].ID == "d2"
	})
}
