// Package push maintains the persistent listing channel: a websocket
// consumer that surfaces recruitment create/update/delete broadcasts and
// connection lifecycle signals. The channel has no replay mechanism, so a
// consumer must treat every reconnect as a potential event gap and recover
// by re-fetching the snapshot.
package push

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mappyas/gamematch/pkg/domain"
)

// Kind identifies an event coming out of the channel.
type Kind string

const (
	KindCreated      Kind = "created"
	KindUpdated      Kind = "updated"
	KindDeleted      Kind = "deleted"
	KindConnected    Kind = "connected"
	KindDisconnected Kind = "disconnected"
)

// Event is one inbound channel event. Recruitment is set for created/updated,
// RecruitmentID for deleted, Clean and Err for disconnected.
type Event struct {
	Kind          Kind
	Recruitment   *domain.Recruitment
	RecruitmentID uuid.UUID
	Clean         bool
	Err           error
}

// frame is the wire shape of one inbound push message.
type frame struct {
	Type          string              `json:"type"`
	Recruitment   *domain.Recruitment `json:"recruitment,omitempty"`
	RecruitmentID uuid.UUID           `json:"recruitment_id,omitempty"`
}

const (
	// readLimit caps a single inbound frame.
	readLimit = 1 << 20

	defaultBackoffBase = time.Second
	defaultBackoffCap  = 30 * time.Second
)

// Channel is a reconnecting consumer of the recruitment push endpoint.
// It dials, decodes frames into Events, and on any close or error backs off
// exponentially and redials until its context is cancelled. Transport
// failures are never fatal; they surface as disconnected events.
type Channel struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	events chan Event

	backoffBase time.Duration
	backoffCap  time.Duration
}

// New creates a channel for the given websocket URL. The token, if any, is
// sent as a bearer Authorization header on the handshake.
func New(wsURL, token string) *Channel {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return &Channel{
		url:         wsURL,
		header:      header,
		dialer:      websocket.DefaultDialer,
		events:      make(chan Event, 64),
		backoffBase: defaultBackoffBase,
		backoffCap:  defaultBackoffCap,
	}
}

// Events returns the inbound event stream. It is closed when Run returns.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Run connects and consumes until ctx is cancelled. Every successful
// handshake emits a connected event; every close or error emits a
// disconnected event and schedules a redial. Run closes the event stream
// on return.
func (c *Channel) Run(ctx context.Context) {
	defer close(c.events)

	backoff := c.backoffBase
	for {
		conn, resp, err := c.dialer.DialContext(ctx, c.url, c.header)
		if resp != nil && resp.Body != nil {
			resp.Body.Close() //nolint:errcheck // handshake response body is unused
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.emit(ctx, Event{Kind: KindDisconnected, Err: err})
			if !c.sleep(ctx, backoff) {
				return
			}
			backoff = c.nextBackoff(backoff)
			continue
		}

		backoff = c.backoffBase
		c.emit(ctx, Event{Kind: KindConnected})
		c.readLoop(ctx, conn)

		if ctx.Err() != nil {
			return
		}
		if !c.sleep(ctx, backoff) {
			return
		}
		backoff = c.nextBackoff(backoff)
	}
}

// readLoop consumes frames from one connection until it fails or ctx ends.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close() //nolint:errcheck // unblocks the pending read
		case <-done:
		}
	}()
	defer conn.Close() //nolint:errcheck

	conn.SetReadLimit(readLimit)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			clean := websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
			c.emit(ctx, Event{Kind: KindDisconnected, Clean: clean, Err: err})
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			// A malformed frame is skipped, not fatal — the next snapshot
			// reload recovers whatever it carried.
			continue
		}

		switch f.Type {
		case "recruitment_created":
			if f.Recruitment != nil {
				c.emit(ctx, Event{Kind: KindCreated, Recruitment: f.Recruitment})
			}
		case "recruitment_update":
			if f.Recruitment != nil {
				c.emit(ctx, Event{Kind: KindUpdated, Recruitment: f.Recruitment})
			}
		case "recruitment_deleted":
			if f.RecruitmentID != uuid.Nil {
				c.emit(ctx, Event{Kind: KindDeleted, RecruitmentID: f.RecruitmentID})
			}
		}
	}
}

func (c *Channel) emit(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}

// sleep waits out one backoff interval. Returns false if ctx ended first.
func (c *Channel) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Channel) nextBackoff(cur time.Duration) time.Duration {
	next := cur * 2
	if next > c.backoffCap {
		return c.backoffCap
	}
	return next
}
