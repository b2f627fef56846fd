// Package store implements the per-screen state container used by every
// feature. A Store owns one screen's state, processes intents strictly
// sequentially on a single goroutine, and publishes one-shot actions
// (navigation, flash messages) to whoever is draining the action channel.
//
// The processing model is deliberately actor-like: intents are queued FIFO
// and the reducer runs one intent to completion (including any blocking
// use-case calls) before the next is dequeued. Concurrent reducer execution
// for the same container cannot happen.
package store

import (
	"context"
	"sync"

	"github.com/ledgerdesk/ledgerdesk/internal/logger"
)

// Intent is a user- or system-triggered event consumed by a reducer.
// Feature packages define closed intent sets.
type Intent any

// Action is a one-shot side-effect signal, distinct from state. Delivery is
// at-most-once: if the action buffer is full because nobody is draining it,
// the action is dropped (and logged).
type Action any

// intentQueueSize bounds the pending-intent queue. The reducer drains this
// far faster than a human can produce intents; the bound only matters when
// a use-case call is in flight and the user keeps typing.
const intentQueueSize = 64

// Store is the generic state container. S is the screen's sealed state
// interface; the current value is always exactly one variant of it.
type Store[S any] struct {
	name string

	mu     sync.Mutex
	state  S
	closed bool

	intents chan Intent
	actions chan Action
	changes chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Store holding initialState. The store is inert until Run is
// called; intents dispatched before Run are queued.
func New[S any](name string, initialState S) *Store[S] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Store[S]{
		name:    name,
		state:   initialState,
		intents: make(chan Intent, intentQueueSize),
		actions: make(chan Action, 1),
		changes: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Run starts the intent loop with the given reducer. The reducer receives
// the store's lifecycle context; any blocking call made with it is
// cancelled when the store closes. Run returns immediately.
func (s *Store[S]) Run(reduce func(ctx context.Context, i Intent)) {
	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.ctx.Done():
				return
			case i := <-s.intents:
				s.safeReduce(reduce, i)
			}
		}
	}()
}

// safeReduce invokes the reducer, containing panics. A reducer bug must
// never take down the whole program; the failure is logged and the screen
// keeps its last state.
func (s *Store[S]) safeReduce(reduce func(ctx context.Context, i Intent), i Intent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("store %s: reducer panic on %T: %v", s.name, i, r)
		}
	}()
	reduce(s.ctx, i)
}

// Dispatch enqueues an intent for sequential processing. Intents are
// processed in the order dispatched. After Close, or if the queue is full,
// the intent is dropped.
func (s *Store[S]) Dispatch(i Intent) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		logger.Debug("store %s: dropping %T after close", s.name, i)
		return
	}
	select {
	case s.intents <- i:
	default:
		logger.Warn("store %s: intent queue full, dropping %T", s.name, i)
	}
}

// State returns a snapshot of the current state.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UpdateState atomically replaces the state with transform applied to the
// snapshot at invocation time. The read-modify-write happens under the
// store lock, so re-entrant updates cannot tear. After Close this is a
// no-op: a use-case completing late cannot mutate a disposed screen.
func (s *Store[S]) UpdateState(transform func(S) S) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		logger.Debug("store %s: ignoring state update after close", s.name)
		return
	}
	s.state = transform(s.state)
	// Coalescing signal: a pending notification already covers this update.
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Changes returns a channel that receives a signal after state updates.
// Signals coalesce: one receive may cover several updates, so readers
// should re-read State rather than count signals.
func (s *Store[S]) Changes() <-chan struct{} {
	return s.changes
}

// Emit publishes a one-shot action. The buffer holds a single action so a
// subscriber re-arming between reads does not lose it; if the buffer is
// occupied and nobody is draining, the action is dropped.
func (s *Store[S]) Emit(a Action) {
	select {
	case s.actions <- a:
	default:
		logger.Debug("store %s: no subscriber, dropping action %T", s.name, a)
	}
}

// Actions returns the channel one-shot actions are delivered on. There
// should be at most one active reader.
func (s *Store[S]) Actions() <-chan Action {
	return s.actions
}

// Close tears the container down: the lifecycle context is cancelled
// (aborting any in-flight use-case call), the intent loop stops, and all
// later dispatches and state updates become no-ops. Close is idempotent.
func (s *Store[S]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// Done is closed when the intent loop has exited.
func (s *Store[S]) Done() <-chan struct{} {
	return s.done
}

// Context returns the store's lifecycle context.
func (s *Store[S]) Context() context.Context {
	return s.ctx
}

// With runs block only if the current state is variant T, and reports
// whether it ran. It is the guard against invalid transitions: a submit
// intent arriving while already submitting simply does not match and
// becomes a no-op.
func With[S, T any](s *Store[S], block func(T)) bool {
	cur, ok := any(s.State()).(T)
	if !ok {
		return false
	}
	block(cur)
	return true
}
