// Package review holds the document-review screen: the queue of incoming
// invoices and receipts awaiting an approve/reject verdict.
package review

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/billing"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// State is the sealed state set for the review screen.
type State interface{ reviewState() }

type (
	// Loading fetches the pending queue.
	Loading struct{}
	// Ready shows the queue. Deciding holds the ID of a document with an
	// in-flight verdict; FieldError carries local validation feedback.
	Ready struct {
		Documents  []api.Document
		Deciding   string
		FieldError string
	}
	// Errored is a failed fetch or verdict with the intent to replay.
	Errored struct {
		Documents []api.Document
		Cause     error
		Retry     store.Intent
	}
)

func (Loading) reviewState() {}
func (Ready) reviewState()   {}
func (Errored) reviewState() {}

// Intents.
type (
	// Refresh reloads the pending queue.
	Refresh struct{}
	// Approve records an approval verdict.
	Approve struct{ DocumentID string }
	// Reject records a rejection; the note is mandatory.
	Reject struct {
		DocumentID string
		Note       string
	}
	Retry struct{}

	// Queued appends a document pushed on the event stream.
	Queued struct{ Document api.Document }
	// DecidedElsewhere drops a document another device decided.
	DecidedElsewhere struct{ DocumentID string }

	load         struct{}
	replayDecide struct{ Decision api.Decision }
)

// Decided is emitted after a verdict is recorded.
type Decided struct {
	DocumentID string
	Verdict    string
}

// Queue is the injected use-case set.
type Queue interface {
	Pending(ctx context.Context) ([]api.Document, error)
	Decide(ctx context.Context, d api.Decision) error
}

// Container is the review screen container.
type Container struct {
	*store.Store[State]
	queue Queue
}

// NewContainer creates and starts the container; the queue fetch begins
// immediately.
func NewContainer(q Queue) *Container {
	c := &Container{
		Store: store.New[State]("review", Loading{}),
		queue: q,
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
	case Approve:
		store.With(c.Store, func(s Ready) {
			if s.Deciding != "" || !queued(s.Documents, i.DocumentID) {
				return
			}
			c.decide(ctx, s, billing.NewDecision(i.DocumentID, api.VerdictApprove, ""))
		})
	case Reject:
		store.With(c.Store, func(s Ready) {
			if s.Deciding != "" || !queued(s.Documents, i.DocumentID) {
				return
			}
			if i.Note == "" {
				c.UpdateState(func(State) State {
					s.FieldError = "A note is required to reject a document."
					return s
				})
				return
			}
			c.decide(ctx, s, billing.NewDecision(i.DocumentID, api.VerdictReject, i.Note))
		})
	case Retry:
		store.With(c.Store, func(s Errored) {
			c.Dispatch(s.Retry)
		})
	case replayDecide:
		store.With(c.Store, func(s Errored) {
			c.decide(ctx, Ready{Documents: s.Documents}, i.Decision)
		})
	case Queued:
		c.edit(func(s Ready) Ready {
			for _, d := range s.Documents {
				if d.ID == i.Document.ID {
					return s
				}
			}
			s.Documents = append(append([]api.Document{}, s.Documents...), i.Document)
			return s
		})
	case DecidedElsewhere:
		c.edit(func(s Ready) Ready {
			s.Documents = without(s.Documents, i.DocumentID)
			return s
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

func queued(docs []api.Document, id string) bool {
	for _, d := range docs {
		if d.ID == id {
			return true
		}
	}
	return false
}

func without(docs []api.Document, id string) []api.Document {
	kept := make([]api.Document, 0, len(docs))
	for _, d := range docs {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	return kept
}

func (c *Container) load(ctx context.Context) {
	docs, err := c.queue.Pending(ctx)
	if err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(State) State {
			return Errored{Cause: err, Retry: load{}}
		})
		return
	}
	c.UpdateState(func(State) State { return Ready{Documents: docs} })
}

// decide records one verdict. The decision value carries its idempotency
// key from the first attempt, so a replay after failure is the identical
// request.
func (c *Container) decide(ctx context.Context, from Ready, d api.Decision) {
	c.UpdateState(func(State) State {
		return Ready{Documents: from.Documents, Deciding: d.DocumentID}
	})

	if err := c.queue.Decide(ctx, d); err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(State) State {
			return Errored{Documents: from.Documents, Cause: err, Retry: replayDecide{Decision: d}}
		})
		return
	}

	c.UpdateState(func(State) State {
		return Ready{Documents: without(from.Documents, d.DocumentID)}
	})
	c.Emit(Decided{DocumentID: d.DocumentID, Verdict: d.Verdict})
}
