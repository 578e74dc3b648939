package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/flowbuilder/internal/logging"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/ports"
)

// Event names published on /events.
const (
	EventNotice = "notice"
	EventFlow   = "flow"
	EventScene  = "scene"
	EventDiff   = "diff"
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data string
}

// StreamManager handles active SSE connections.
// It implements ports.Notifier and ports.FlowSink so the editor can publish to it directly.
type StreamManager struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[chan Event]map[string]bool // Channel -> watched event names (nil = all)

	lastMu sync.Mutex
	last   *domain.Flow // Last published snapshot, base of the next diff
}

var (
	_ ports.Notifier = (*StreamManager)(nil)
	_ ports.FlowSink = (*StreamManager)(nil)
)

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		logger:      logger,
		subscribers: make(map[chan Event]map[string]bool),
	}
}

// Subscribe registers a listener for the named events (all events if none).
func (sm *StreamManager) Subscribe(names ...string) (<-chan Event, func()) {
	var watch map[string]bool
	if len(names) > 0 {
		watch = make(map[string]bool, len(names))
		for _, n := range names {
			watch[strings.TrimSpace(n)] = true
		}
	}

	ch := make(chan Event, 10)
	sm.mu.Lock()
	sm.subscribers[ch] = watch
	sm.mu.Unlock()

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of active listeners.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends an event to every interested listener.
func (sm *StreamManager) Broadcast(name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		sm.logger.Error("SSE: event encode failed", "event", name, "err", err)
		return
	}
	ev := Event{Name: name, Data: string(data)}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for ch, watch := range sm.subscribers {
		if watch != nil && !watch[name] {
			continue
		}
		select {
		case ch <- ev:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: client buffer full, dropping message", "event", name)
		}
	}
}

// Notify publishes a notice.
func (sm *StreamManager) Notify(n domain.Notice) {
	sm.Broadcast(EventNotice, n)
}

// UpdateFlow publishes a saved snapshot, preceded by its diff against the previous one.
func (sm *StreamManager) UpdateFlow(ctx context.Context, flow domain.Flow) error {
	snapshot := flow.Clone()
	sm.lastMu.Lock()
	prev := sm.last
	sm.last = &snapshot
	sm.lastMu.Unlock()

	if diff := domain.Diff(prev, &snapshot); diff != nil {
		sm.Broadcast(EventDiff, diff)
	}
	sm.Broadcast(EventFlow, flow)
	return nil
}

// SubscribeEvents handles the GET /events request (SSE).
// The optional "watch" query parameter filters event names: ?watch=notice,flow
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var names []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		names = strings.Split(watch, ",")
	}
	ch, cancel := s.Streams.Subscribe(names...)
	defer cancel()
	s.logger.Info("SSE client connected", "watch", names)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected")
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}
