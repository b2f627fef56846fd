package store

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// listState is a minimal state for exercising the store: an ordered record
// of everything the reducer saw.
type listState struct {
	seen []string
}

type recordIntent struct{ label string }
type blockIntent struct{ release chan struct{} }
type panicIntent struct{}

func newRecorder(t *testing.T) (*Store[listState], chan struct{}) {
	t.Helper()
	processed := make(chan struct{}, 128)
	s := New[listState]("test", listState{})
	s.Run(func(ctx context.Context, i Intent) {
		switch i := i.(type) {
		case recordIntent:
			s.UpdateState(func(st listState) listState {
				st.seen = append(st.seen, i.label)
				return st
			})
			processed <- struct{}{}
		case blockIntent:
			select {
			case <-i.release:
			case <-ctx.Done():
			}
			processed <- struct{}{}
		case panicIntent:
			panic("reducer bug")
		}
	})
	t.Cleanup(s.Close)
	return s, processed
}

func waitN(t *testing.T, ch chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for intent %d of %d", i+1, n)
		}
	}
}

func TestIntentsProcessedInFIFOOrder(t *testing.T) {
	s, processed := newRecorder(t)

	const n = 50
	for i := 0; i < n; i++ {
		s.Dispatch(recordIntent{label: fmt.Sprintf("i%02d", i)})
	}
	waitN(t, processed, n)

	st := s.State()
	if len(st.seen) != n {
		t.Fatalf("expected %d processed intents, got %d", n, len(st.seen))
	}
	for i, label := range st.seen {
		if want := fmt.Sprintf("i%02d", i); label != want {
			t.Fatalf("intent %d processed out of order: got %s, want %s", i, label, want)
		}
	}
}

func TestIntentsQueueBehindBlockedReducer(t *testing.T) {
	s, processed := newRecorder(t)

	release := make(chan struct{})
	s.Dispatch(blockIntent{release: release})
	s.Dispatch(recordIntent{label: "after"})

	// The second intent must not run while the first is suspended.
	select {
	case <-processed:
		t.Fatal("intent processed while reducer was suspended")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	waitN(t, processed, 2)

	if got := s.State().seen; len(got) != 1 || got[0] != "after" {
		t.Fatalf("expected [after], got %v", got)
	}
}

func TestUpdateStateAfterCloseIsNoOp(t *testing.T) {
	s := New[listState]("test", listState{seen: []string{"initial"}})
	s.Close()

	s.UpdateState(func(st listState) listState {
		st.seen = append(st.seen, "late")
		return st
	})

	if got := s.State().seen; len(got) != 1 || got[0] != "initial" {
		t.Fatalf("state mutated after close: %v", got)
	}
}

func TestDispatchAfterCloseIsDropped(t *testing.T) {
	s, processed := newRecorder(t)
	s.Close()
	<-s.Done()

	s.Dispatch(recordIntent{label: "late"})

	select {
	case <-processed:
		t.Fatal("intent processed after close")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseCancelsInFlightWork(t *testing.T) {
	s, processed := newRecorder(t)

	// Never released; only context cancellation can unblock it.
	s.Dispatch(blockIntent{release: make(chan struct{})})
	time.Sleep(20 * time.Millisecond)
	s.Close()

	waitN(t, processed, 1)
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("intent loop did not exit after close")
	}
}

func TestReducerPanicDoesNotKillLoop(t *testing.T) {
	s, processed := newRecorder(t)

	s.Dispatch(panicIntent{})
	s.Dispatch(recordIntent{label: "survived"})
	waitN(t, processed, 1)

	if got := s.State().seen; len(got) != 1 || got[0] != "survived" {
		t.Fatalf("loop did not survive panic: %v", got)
	}
}

func TestEmitWithoutSubscriberDoesNotBlock(t *testing.T) {
	s := New[listState]("test", listState{})
	t.Cleanup(s.Close)

	done := make(chan struct{})
	go func() {
		s.Emit("one")
		s.Emit("two") // buffer full, dropped
		s.Emit("three")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked with no subscriber")
	}

	// The single-slot buffer retains the first action for a late subscriber.
	select {
	case a := <-s.Actions():
		if a != "one" {
			t.Fatalf("expected buffered action %q, got %v", "one", a)
		}
	default:
		t.Fatal("expected one buffered action")
	}
}

type idleState struct{ email string }
type busyState struct{}

func TestWithRunsOnlyOnMatchingVariant(t *testing.T) {
	s := New[any]("test", idleState{email: "a@b.com"})
	t.Cleanup(s.Close)

	ran := false
	ok := With(s, func(st idleState) { ran = true })
	if !ok || !ran {
		t.Error("block should run for matching variant")
	}

	s.UpdateState(func(any) any { return busyState{} })

	ran = false
	ok = With(s, func(st idleState) { ran = true })
	if ok || ran {
		t.Error("block must not run for non-matching variant")
	}
}

func TestChangesSignalsAfterUpdate(t *testing.T) {
	s, processed := newRecorder(t)

	s.Dispatch(recordIntent{label: "a"})
	waitN(t, processed, 1)

	select {
	case <-s.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change signal after an update")
	}
}

func TestChangesCoalesce(t *testing.T) {
	s, processed := newRecorder(t)

	// Several updates with nobody listening leave at most one pending
	// signal; the state itself is the source of truth.
	for i := 0; i < 5; i++ {
		s.Dispatch(recordIntent{label: fmt.Sprintf("i%d", i)})
	}
	waitN(t, processed, 5)

	select {
	case <-s.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("expected one pending change signal")
	}
	select {
	case <-s.Changes():
		t.Fatal("signals must coalesce to a single pending notification")
	default:
	}

	if got := len(s.State().seen); got != 5 {
		t.Errorf("state should hold all updates, got %d", got)
	}
}
