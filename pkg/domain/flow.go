package domain

import "time"

// SchemaVersion is the version stamped into every saved flow.
const SchemaVersion = "2.0"

// Edge is a directed connection from an output port to an input port.
type Edge struct {
	ID       string `json:"id" yaml:"id"`
	From     string `json:"from" yaml:"from"`
	FromPort string `json:"from_port" yaml:"from_port"`
	To       string `json:"to" yaml:"to"`
	ToPort   string `json:"to_port" yaml:"to_port"`
}

// Touches reports whether the edge references the node id at either end.
func (e Edge) Touches(nodeID string) bool {
	return e.From == nodeID || e.To == nodeID
}

// Metadata describes a saved flow.
type Metadata struct {
	Version      string    `json:"version" yaml:"version"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Multilingual bool      `json:"multilingual" yaml:"multilingual"`
}

// Flow is the complete graph plus metadata. It is the unit of persistence:
// each save overwrites the previous snapshot.
type Flow struct {
	Nodes    []Node   `json:"nodes" yaml:"nodes"`
	Edges    []Edge   `json:"edges" yaml:"edges"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// NewFlow creates an empty multilingual flow.
func NewFlow(now time.Time) Flow {
	return Flow{
		Nodes: []Node{},
		Edges: []Edge{},
		Metadata: Metadata{
			Version:      SchemaVersion,
			CreatedAt:    now.UTC(),
			Multilingual: true,
		},
	}
}

// Clone returns a deep copy of the flow.
func (f Flow) Clone() Flow {
	out := Flow{
		Nodes:    make([]Node, len(f.Nodes)),
		Edges:    make([]Edge, len(f.Edges)),
		Metadata: f.Metadata,
	}
	for i, n := range f.Nodes {
		out.Nodes[i] = n.Clone()
	}
	copy(out.Edges, f.Edges)
	return out
}

// Node returns the node with the given id.
func (f Flow) Node(id string) (Node, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodesOfKind returns every node of the given kind, in list order.
func (f Flow) NodesOfKind(kind Kind) []Node {
	var out []Node
	for _, n := range f.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
