// Package ws pushes flow snapshots and notices to browser clients over websockets.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/flowbuilder/internal/logging"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/ports"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
	// DefaultReadLimit caps inbound frames; canvas commands are a few hundred bytes.
	DefaultReadLimit = 64 << 10
)

// Message is the envelope written to clients.
type Message struct {
	Type   string          `json:"type"` // flow | notice | reply
	Flow   *domain.Flow    `json:"flow,omitempty"`
	Notice *domain.Notice  `json:"notice,omitempty"`
	Reply  json.RawMessage `json:"reply,omitempty"`
}

// Handler answers an inbound client frame. A nil reply writes nothing.
type Handler func(ctx context.Context, frame []byte) (reply any, err error)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots and notices out to every connected client.
// It implements ports.FlowSink and ports.Notifier.
type Hub struct {
	upgrader websocket.Upgrader
	handler  Handler
	logger   *slog.Logger
	limit    int64

	mu      sync.RWMutex
	clients map[*client]struct{}
}

var (
	_ ports.FlowSink = (*Hub)(nil)
	_ ports.Notifier = (*Hub)(nil)
)

// Option configures the Hub.
type Option func(*Hub)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithHandler sets the handler of inbound frames (canvas commands).
func WithHandler(fn Handler) Option {
	return func(h *Hub) {
		h.handler = fn
	}
}

// WithReadLimit sets the largest accepted inbound frame. Larger frames close the connection.
func WithReadLimit(n int64) Option {
	return func(h *Hub) {
		h.limit = n
	}
}

// WithAllowedOrigins restricts the websocket handshake. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Hub) {
		allowed := make(map[string]bool, len(origins))
		for _, o := range origins {
			allowed[o] = true
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		}
	}
}

// NewHub creates a hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		logger:  logging.NewNop(),
		limit:   DefaultReadLimit,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UpdateFlow broadcasts a saved snapshot.
func (h *Hub) UpdateFlow(ctx context.Context, flow domain.Flow) error {
	return h.broadcast(Message{Type: "flow", Flow: &flow})
}

// Notify broadcasts a notice.
func (h *Hub) Notify(n domain.Notice) {
	if err := h.broadcast(Message{Type: "notice", Notice: &n}); err != nil {
		h.logger.Warn("failed to broadcast notice", "err", err)
	}
}

func (h *Hub) broadcast(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Drop message if channel is full (slow client)
			h.logger.Warn("ws: client buffer full, dropping message", "type", msg.Type)
		}
	}
	return nil
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("ws client connected", "clients", h.Clients())

	done := make(chan struct{})
	go h.writeLoop(c, done)
	h.readLoop(r.Context(), c)

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	close(done)
	conn.Close()
	h.logger.Debug("ws client disconnected", "clients", h.Clients())
}

func (h *Hub) readLoop(ctx context.Context, c *client) {
	c.conn.SetReadLimit(h.limit)
	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if h.handler == nil {
			continue
		}
		reply, err := h.handler(ctx, frame)
		if err != nil {
			reply = map[string]string{"error": err.Error()}
		}
		if reply == nil {
			continue
		}
		raw, err := json.Marshal(reply)
		if err != nil {
			h.logger.Error("ws reply encode failed", "err", err)
			continue
		}
		data, _ := json.Marshal(Message{Type: "reply", Reply: raw})
		select {
		case c.send <- data:
		default:
			h.logger.Warn("ws: client buffer full, dropping reply")
		}
	}
}

func (h *Hub) writeLoop(c *client, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("ws write failed", "err", err)
				return
			}
		}
	}
}
