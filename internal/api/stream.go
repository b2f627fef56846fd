package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/logger"
)

// EventStream is a read-only subscription to server push events. The app
// treats it as a passive observer: events arrive on Events() and the
// channel closes when the connection drops or the stream is closed.
type EventStream struct {
	conn   *websocket.Conn
	events chan Event
	cancel context.CancelFunc
}

const streamDialTimeout = 10 * time.Second

// Subscribe opens the event stream for the authenticated user. The caller
// owns the returned stream and must Close it.
func (c *Client) Subscribe(ctx context.Context) (*EventStream, error) {
	const op = errors.Op("api.Subscribe")

	wsURL := strings.Replace(c.base, "http", "ws", 1) + "/api/v1/events"
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	dialCtx, cancelDial := context.WithTimeout(ctx, streamDialTimeout)
	defer cancelDial()

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, wsURL, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, errors.SessionExpired()
		}
		return nil, errors.E(op, errors.KindNetwork, "could not open event stream", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	s := &EventStream{
		conn:   conn,
		events: make(chan Event, 16),
		cancel: cancel,
	}
	go s.readLoop(streamCtx)
	return s, nil
}

func (s *EventStream) readLoop(ctx context.Context) {
	defer close(s.events)
	defer s.conn.Close()

	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	log := logger.Component("stream")
	for {
		var ev Event
		if err := s.conn.ReadJSON(&ev); err != nil {
			if ctx.Err() == nil {
				log.Warn("event stream closed", "error", err)
			}
			return
		}
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// Events returns the channel server events are delivered on. It is closed
// when the stream ends.
func (s *EventStream) Events() <-chan Event {
	return s.events
}

// Close tears the subscription down.
func (s *EventStream) Close() {
	s.cancel()
}
