// Package realtime implements the comment broadcast hub: per-blog
// subscription rooms and best-effort fan-out of comment events to room
// members.
//
// CONCURRENCY MODEL:
// All membership state (which session is in which room) is owned by a single
// goroutine — the hub's run loop. Join, Leave, and Publish never touch the
// maps directly; they post an operation onto an unbuffered command channel
// and the loop executes operations one at a time, in the order they arrive.
//
// This buys two guarantees without any locks:
//   - Two publishes to the same room can never interleave, so every member
//     of a room sees events in publish order.
//   - A join or leave is totally ordered against publishes: once Join
//     returns, a subsequent Publish reaches the new member; once Leave
//     returns, no later Publish can.
//
// Delivery to an individual member is best-effort. Each session has a
// bounded event buffer; a member that can't keep up has the event dropped
// (logged, never surfaced to the publisher), so one slow or dead connection
// can never stall the rest of the room.
//
// The hub knows nothing about websockets or persistence — it only announces
// events it is handed. The transport lives in the handler package and
// comment persistence in the service package.
package realtime

import (
	"log/slog"

	"github.com/rs/xid"

	"github.com/nencyajudiya/blogstream/internal/model"
)

// sessionBuffer is the per-session event buffer size. Sixteen pending
// events is far more than a live connection that is being read ever
// accumulates; a session that hits the limit is effectively dead or stuck.
const sessionBuffer = 16

// Session is one live subscriber connection's view of the hub. Events the
// hub delivers arrive on the Events channel; the channel is closed when the
// session leaves.
type Session struct {
	id     string
	events chan model.CommentEvent
}

// ID returns the session's opaque identifier, used only for logging.
func (s *Session) ID() string { return s.id }

// Events returns the channel on which the session receives broadcasts.
// The channel is closed after Leave, so a consumer can simply range over it.
func (s *Session) Events() <-chan model.CommentEvent { return s.events }

// Hub manages room membership and event fan-out for one process.
// Construct it explicitly with NewHub and pass it to whatever needs to
// publish — there is deliberately no package-level instance.
type Hub struct {
	logger *slog.Logger

	ops    chan func()
	closed chan struct{}

	// Owned exclusively by the run loop. rooms maps blog ID to members;
	// sessions maps each live session to the set of rooms it joined,
	// which is what makes leave-from-all cheap on disconnect.
	rooms    map[string]map[*Session]struct{}
	sessions map[*Session]map[string]struct{}
}

// NewHub creates a hub and starts its run loop.
// Call Close on shutdown to stop the loop and close all session channels.
func NewHub(logger *slog.Logger) *Hub {
	h := &Hub{
		logger:   logger,
		ops:      make(chan func()),
		closed:   make(chan struct{}),
		rooms:    make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]map[string]struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case op := <-h.ops:
			op()
		case <-h.closed:
			for s := range h.sessions {
				close(s.events)
			}
			h.rooms = nil
			h.sessions = nil
			return
		}
	}
}

// do posts an operation to the run loop. The ops channel is unbuffered, so
// by the time do returns the loop has accepted the operation and will run it
// before any operation posted later — that handoff is what serializes
// callers. After Close, operations are silently dropped.
func (h *Hub) do(op func()) {
	select {
	case h.ops <- op:
	case <-h.closed:
	}
}

// Close stops the run loop and closes every remaining session channel.
func (h *Hub) Close() {
	close(h.closed)
}

// NewSession registers a new subscriber connection with no room memberships.
func (h *Hub) NewSession() *Session {
	s := &Session{
		id:     xid.New().String(),
		events: make(chan model.CommentEvent, sessionBuffer),
	}
	h.do(func() {
		h.sessions[s] = make(map[string]struct{})
	})
	return s
}

// Join adds the session to the room named by blogID. Joining a room twice
// has the same effect as joining once. Joining after Leave is a no-op.
func (h *Hub) Join(s *Session, blogID string) {
	h.do(func() {
		joined, ok := h.sessions[s]
		if !ok {
			return // session already left
		}
		if _, ok := joined[blogID]; ok {
			return // idempotent
		}
		joined[blogID] = struct{}{}

		room, ok := h.rooms[blogID]
		if !ok {
			room = make(map[*Session]struct{})
			h.rooms[blogID] = room
		}
		room[s] = struct{}{}

		h.logger.Debug("session joined room",
			slog.String("session", s.id),
			slog.String("blogID", blogID),
		)
	})
}

// Leave removes the session from every room it joined and closes its event
// channel. The transport layer calls this when the underlying connection
// terminates, normally or not. Safe to call more than once.
func (h *Hub) Leave(s *Session) {
	h.do(func() {
		joined, ok := h.sessions[s]
		if !ok {
			return
		}
		for blogID := range joined {
			room := h.rooms[blogID]
			delete(room, s)
			if len(room) == 0 {
				delete(h.rooms, blogID)
			}
		}
		delete(h.sessions, s)
		close(s.events)

		h.logger.Debug("session left", slog.String("session", s.id))
	})
}

// Publish delivers the event to every current member of the blog's room,
// including the event's originator if their session happens to be
// subscribed. A member whose buffer is full is skipped with a log line;
// the publisher never sees an error.
func (h *Hub) Publish(blogID string, event model.CommentEvent) {
	h.do(func() {
		for s := range h.rooms[blogID] {
			select {
			case s.events <- event:
			default:
				h.logger.Warn("dropping event for slow subscriber",
					slog.String("session", s.id),
					slog.String("blogID", blogID),
				)
			}
		}
	})
}
