// Package canvas holds the editor's canvas state in an explicit container.
//
// Viewport, interaction mode, drag/pan bookkeeping, the pending connection and the
// selection live in one State value that only changes through Dispatch. The
// interaction controller writes it; the renderer and viewport consumers read it.
package canvas

import (
	"sync"

	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/viewport"
)

// Mode is the active interaction mode. Exactly one is active at a time.
type Mode int

const (
	Idle Mode = iota
	DraggingNode
	PanningCanvas
	ConnectingEdge
)

func (m Mode) String() string {
	switch m {
	case DraggingNode:
		return "dragging_node"
	case PanningCanvas:
		return "panning_canvas"
	case ConnectingEdge:
		return "connecting_edge"
	default:
		return "idle"
	}
}

// MarshalText renders the mode by name in JSON.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// PortRef identifies a port on a node.
type PortRef struct {
	NodeID string `json:"node_id"`
	PortID string `json:"port_id"`
}

// State is a snapshot of the canvas.
type State struct {
	Viewport viewport.Viewport `json:"viewport"`
	Mode     Mode              `json:"mode"`

	// DraggingNode
	DragNodeID string       `json:"drag_node_id,omitempty"`
	DragOffset domain.Point `json:"drag_offset"` // World pointer minus node position

	// PanningCanvas; last pointer screen position
	LastPointer domain.Point `json:"last_pointer"`

	// ConnectingEdge
	Pending *PortRef     `json:"pending,omitempty"`
	Preview domain.Point `json:"preview"` // World-space end of the floating preview edge

	Selected string `json:"selected,omitempty"`
}

// Store is the state container. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state State
	subs  map[int]func(State)
	next  int
}

// NewStore creates a store in Idle mode with the identity viewport.
func NewStore() *Store {
	return &Store{
		state: State{Viewport: viewport.New()},
		subs:  make(map[int]func(State)),
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.copy()
}

// Dispatch applies an action and notifies subscribers (redraw trigger).
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = a.apply(s.state.copy())
	snapshot := s.state.copy()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return snapshot
}

// Subscribe registers fn to be called after every Dispatch. It returns an unsubscribe function.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (st State) copy() State {
	if st.Pending != nil {
		p := *st.Pending
		st.Pending = &p
	}
	return st
}
