package app

import (
	"testing"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

func TestListenForChangeDeliversMessage(t *testing.T) {
	ch := make(chan struct{}, 1)
	done := make(chan struct{})

	ch <- struct{}{}
	msg := listenForChange(ScreenLogin, ch, done)()
	got, ok := msg.(StateChangedMsg)
	if !ok || got.Screen != ScreenLogin {
		t.Fatalf("expected StateChangedMsg for login, got %#v", msg)
	}
}

func TestListenForChangeStopsOnDone(t *testing.T) {
	ch := make(chan struct{})
	done := make(chan struct{})
	close(done)

	if msg := listenForChange(ScreenLogin, ch, done)(); msg != nil {
		t.Fatalf("expected nil after done, got %#v", msg)
	}
}

func TestListenForActionDeliversAction(t *testing.T) {
	ch := make(chan store.Action, 1)
	done := make(chan struct{})

	ch <- struct{ Name string }{"payload"}
	msg := listenForAction(ScreenReview, ch, done)()
	got, ok := msg.(ActionMsg)
	if !ok || got.Screen != ScreenReview {
		t.Fatalf("expected ActionMsg for review, got %#v", msg)
	}
}

func TestListenForEventReportsClosedStream(t *testing.T) {
	ch := make(chan api.Event)
	close(ch)

	if _, ok := listenForEvent(ch)().(streamClosedMsg); !ok {
		t.Fatal("expected streamClosedMsg when the channel closes")
	}
}

func TestListenForEventDeliversEvent(t *testing.T) {
	ch := make(chan api.Event, 1)
	ch <- api.Event{Type: api.EventDocumentQueued}

	msg := listenForEvent(ch)()
	got, ok := msg.(ServerEventMsg)
	if !ok || got.Event.Type != api.EventDocumentQueued {
		t.Fatalf("expected ServerEventMsg, got %#v", msg)
	}
}
