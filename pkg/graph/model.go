// Package graph implements the authoritative in-memory flow graph.
// It enforces the edge direction rule and the cascade-delete invariant:
// every edge endpoint always references an existing node.
package graph

import (
	"fmt"
	"time"

	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/google/uuid"
)

// CopySuffix is appended to the title of a duplicated node.
const CopySuffix = " (Copy)"

// DuplicateOffset is the world-space delta applied to a duplicated node.
var DuplicateOffset = domain.Point{X: 50, Y: 50}

// Model owns the node and edge lists of one flow.
// It is not safe for concurrent use; the editor serializes access.
type Model struct {
	flow  domain.Flow
	newID func(prefix string) string
}

// Option configures the Model.
type Option func(*Model)

// WithIDGenerator overrides id allocation (useful for deterministic tests).
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(m *Model) {
		m.newID = fn
	}
}

// New creates an empty model.
func New(opts ...Option) *Model {
	m := &Model{
		flow:  domain.NewFlow(time.Now()),
		newID: defaultID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func defaultID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// CreateNode allocates a fresh id and appends a new node.
// The payload is not validated beyond what the edit form enforces.
func (m *Model) CreateNode(kind domain.Kind, position domain.Point, payload domain.Payload) (domain.Node, error) {
	kind, err := domain.ParseKind(string(kind))
	if err != nil {
		return domain.Node{}, err
	}

	node := domain.Node{
		ID:       m.newID("node"),
		Kind:     kind,
		Position: position,
		Payload:  payload.Clone(),
	}
	if kind == domain.KindIntent {
		node.Payload.Intents = domain.NormalizeIntents(node.Payload.Intents)
	}
	m.flow.Nodes = append(m.flow.Nodes, node)
	return node.Clone(), nil
}

// DeleteNode removes the node and every edge referencing it.
// It reports whether a node was removed; deleting a missing id is a no-op.
func (m *Model) DeleteNode(id string) bool {
	idx := m.indexOf(id)
	if idx < 0 {
		return false
	}
	m.flow.Nodes = append(m.flow.Nodes[:idx], m.flow.Nodes[idx+1:]...)

	kept := m.flow.Edges[:0]
	for _, e := range m.flow.Edges {
		if !e.Touches(id) {
			kept = append(kept, e)
		}
	}
	m.flow.Edges = kept
	return true
}

// DuplicateNode deep-copies a node with a fresh id, an offset position and a "(Copy)" title.
// Edges are never copied.
func (m *Model) DuplicateNode(id string) (domain.Node, error) {
	src, ok := m.Node(id)
	if !ok {
		return domain.Node{}, fmt.Errorf("duplicate %q: %w", id, domain.ErrNodeNotFound)
	}

	dup := src.Clone()
	dup.ID = m.newID("node")
	dup.Position = src.Position.Add(DuplicateOffset)
	if dup.Payload.Title != "" {
		dup.Payload.Title += CopySuffix
	}
	m.flow.Nodes = append(m.flow.Nodes, dup)
	return dup.Clone(), nil
}

// CreateEdge connects an output port to an input port of a different node.
func (m *Model) CreateEdge(fromID, fromPort, toID, toPort string) (domain.Edge, error) {
	if fromID == toID {
		return domain.Edge{}, domain.ErrSelfLoop
	}
	from, ok := m.Node(fromID)
	if !ok {
		return domain.Edge{}, fmt.Errorf("edge source %q: %w", fromID, domain.ErrNodeNotFound)
	}
	to, ok := m.Node(toID)
	if !ok {
		return domain.Edge{}, fmt.Errorf("edge target %q: %w", toID, domain.ErrNodeNotFound)
	}

	src, ok := domain.FindPort(from.Kind, fromPort)
	if !ok {
		return domain.Edge{}, fmt.Errorf("%w: %s has no port %q", domain.ErrUnknownPort, from.Kind, fromPort)
	}
	dst, ok := domain.FindPort(to.Kind, toPort)
	if !ok {
		return domain.Edge{}, fmt.Errorf("%w: %s has no port %q", domain.ErrUnknownPort, to.Kind, toPort)
	}
	if src.Direction != domain.PortOutput || dst.Direction != domain.PortInput {
		return domain.Edge{}, fmt.Errorf("%w: %s -> %s", domain.ErrPortDirection, src.Direction, dst.Direction)
	}

	edge := domain.Edge{
		ID:       m.newID("edge"),
		From:     fromID,
		FromPort: fromPort,
		To:       toID,
		ToPort:   toPort,
	}
	m.flow.Edges = append(m.flow.Edges, edge)
	return edge, nil
}

// DeleteEdge removes an edge by id. It reports whether an edge was removed.
func (m *Model) DeleteEdge(id string) bool {
	for i, e := range m.flow.Edges {
		if e.ID == id {
			m.flow.Edges = append(m.flow.Edges[:i], m.flow.Edges[i+1:]...)
			return true
		}
	}
	return false
}

// MoveNode sets a node position. Edges are not touched: they are derived from
// live node positions at render time.
func (m *Model) MoveNode(id string, position domain.Point) error {
	idx := m.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("move %q: %w", id, domain.ErrNodeNotFound)
	}
	m.flow.Nodes[idx].Position = position
	return nil
}

// UpdatePayload replaces a node payload (edit-form commit). The kind is immutable.
func (m *Model) UpdatePayload(id string, payload domain.Payload) (domain.Node, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return domain.Node{}, fmt.Errorf("update %q: %w", id, domain.ErrNodeNotFound)
	}
	payload = payload.Clone()
	if m.flow.Nodes[idx].Kind == domain.KindIntent {
		payload.Intents = domain.NormalizeIntents(payload.Intents)
	}
	m.flow.Nodes[idx].Payload = payload
	return m.flow.Nodes[idx].Clone(), nil
}

// Node returns a copy of the node with the given id.
func (m *Model) Node(id string) (domain.Node, bool) {
	idx := m.indexOf(id)
	if idx < 0 {
		return domain.Node{}, false
	}
	return m.flow.Nodes[idx].Clone(), true
}

// Len returns the number of nodes.
func (m *Model) Len() int {
	return len(m.flow.Nodes)
}

// Nodes returns copies of all nodes in insertion order.
func (m *Model) Nodes() []domain.Node {
	out := make([]domain.Node, len(m.flow.Nodes))
	for i, n := range m.flow.Nodes {
		out[i] = n.Clone()
	}
	return out
}

// Edges returns a copy of the edge list.
func (m *Model) Edges() []domain.Edge {
	return append([]domain.Edge(nil), m.flow.Edges...)
}

// Snapshot returns a deep copy of the flow.
func (m *Model) Snapshot() domain.Flow {
	return m.flow.Clone()
}

// Replace swaps the whole flow (load / import). Dangling edges and unknown ports are dropped.
func (m *Model) Replace(flow domain.Flow) []error {
	repaired, problems := Repair(flow)
	m.flow = repaired
	return problems
}

func (m *Model) indexOf(id string) int {
	for i, n := range m.flow.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
