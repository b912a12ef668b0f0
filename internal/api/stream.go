package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/hogday/internal/engine"
)

const (
	maxStreamConns = 16
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBuffer     = 32
)

// MessageTick is the type of the per-tick stream message.
const MessageTick = "TICK"

// StreamMessage is one websocket message pushed to renderers.
type StreamMessage struct {
	Type  string        `json:"type"`
	Tick  uint64        `json:"tick"`
	Frame *engine.Frame `json:"frame"`
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans tick frames out to websocket subscribers. A subscriber that falls
// a full buffer behind is dropped.
type Hub struct {
	mu       sync.Mutex
	clients  map[*streamClient]struct{}
	upgrader websocket.Upgrader
}

// NewHub creates a hub accepting connections from any origin allowed by
// checkOrigin; nil allows all.
func NewHub(checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		clients:  make(map[*streamClient]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends a frame to every subscriber without blocking.
func (h *Hub) Publish(f engine.Frame) {
	payload, err := encodeFrame(&f)
	if err != nil {
		slog.Error("stream encode failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slog.Warn("stream client too slow, dropping")
			h.drop(c)
		}
	}
}

func encodeFrame(f *engine.Frame) ([]byte, error) {
	return json.Marshal(StreamMessage{Type: MessageTick, Tick: f.Tick, Frame: f})
}

// register adds c unless the hub is already at maxStreamConns.
func (h *Hub) register(c *streamClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) >= maxStreamConns {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.drop(c)
	}
}

// drop must be called with mu held.
func (h *Hub) drop(c *streamClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) remove(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// serve upgrades the request and streams frames until the peer goes away.
// initial, if set, is sent before any published frame.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, initial *engine.Frame) {
	h.mu.Lock()
	full := len(h.clients) >= maxStreamConns
	h.mu.Unlock()
	if full {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream upgrade failed", "error", err)
		return
	}

	c := &streamClient{conn: conn, send: make(chan []byte, sendBuffer)}
	if initial != nil {
		payload, err := encodeFrame(initial)
		if err != nil {
			slog.Error("stream encode failed", "error", err)
		} else {
			c.send <- payload
		}
	}
	// Another upgrade may have taken the last slot since the check above.
	if !h.register(c) {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many stream connections"))
		conn.Close()
		return
	}
	slog.Info("stream client connected", "remote", r.RemoteAddr)

	go c.writePump()
	c.readPump()
	h.remove(c)
	slog.Info("stream client disconnected", "remote", r.RemoteAddr)
}

// readPump discards client messages and notices when the peer goes away.
func (c *streamClient) readPump() {
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("stream read error", "error", err)
			}
			return
		}
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
