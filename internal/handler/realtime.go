package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nencyajudiya/blogstream/internal/model"
	"github.com/nencyajudiya/blogstream/internal/realtime"
)

// Websocket keepalive tuning, per gorilla/websocket convention: the server
// pings on a ticker and the read side requires a pong (or any message)
// before pongWait elapses, so dead connections are detected and the hub's
// implicit leave runs.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// socketFrame is the wire envelope in both directions.
//
// Client → server: {"type":"joinBlog","blogId":"..."}
// Server → client: {"type":"updateComments","data":{...CommentEvent}}
type socketFrame struct {
	Type   string              `json:"type"`
	BlogID string              `json:"blogId,omitempty"`
	Data   *model.CommentEvent `json:"data,omitempty"`
}

// RealtimeHandler upgrades connections and bridges them to the hub: one
// read loop for joinBlog frames, one write pump draining the session's
// event channel.
type RealtimeHandler struct {
	hub      *realtime.Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewRealtimeHandler creates a RealtimeHandler.
func NewRealtimeHandler(hub *realtime.Hub, logger *slog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser clients live on other origins; the token-free
			// subscribe-only protocol makes cross-origin reads harmless.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// HandleSocket is the websocket endpoint.
//
// HTTP: GET /ws
//
// The session leaves the hub when this handler returns, however the
// connection died — the deferred Leave is the implicit leave-on-disconnect
// the room model relies on.
func (h *RealtimeHandler) HandleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an error response.
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	session := h.hub.NewSession()
	h.logger.Debug("websocket connected", slog.String("session", session.ID()))

	defer func() {
		h.hub.Leave(session)
		conn.Close()
		h.logger.Debug("websocket disconnected", slog.String("session", session.ID()))
	}()

	go h.writePump(conn, session)
	h.readLoop(conn, session)
}

// readLoop consumes client frames until the connection dies. joinBlog is
// the only client-initiated operation; unknown frame types are ignored so
// the protocol can grow without breaking old servers.
func (h *RealtimeHandler) readLoop(conn *websocket.Conn, session *realtime.Session) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame socketFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error",
					slog.String("session", session.ID()),
					slog.String("error", err.Error()),
				)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		if frame.Type == "joinBlog" && frame.BlogID != "" {
			h.hub.Join(session, frame.BlogID)
		}
	}
}

// writePump is the connection's sole writer: broadcast events from the
// session channel plus keepalive pings. It exits when the session channel
// closes (hub leave) or a write fails (dead connection), and closing the
// connection unblocks the read loop.
func (h *RealtimeHandler) writePump(conn *websocket.Conn, session *realtime.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-session.Events():
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(socketFrame{Type: "updateComments", Data: &event}); err != nil {
				h.logger.Debug("websocket write failed",
					slog.String("session", session.ID()),
					slog.String("error", err.Error()),
				)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
