package domain

import (
	"reflect"
)

// FlowDiff represents the changes between two flow snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type FlowDiff struct {
	// Nodes that are new or whose position/payload changed.
	UpsertedNodes []Node `json:"upserted_nodes,omitempty"`

	// RemovedNodes holds ids of nodes no longer present.
	RemovedNodes []string `json:"removed_nodes,omitempty"`

	AddedEdges   []Edge   `json:"added_edges,omitempty"`
	RemovedEdges []string `json:"removed_edges,omitempty"`
}

// Diff calculates the difference between oldFlow and newFlow.
// If oldFlow is nil, it returns a diff representing the entire newFlow (initial load).
// It returns nil when nothing changed.
func Diff(oldFlow, newFlow *Flow) *FlowDiff {
	if newFlow == nil {
		return nil
	}

	diff := &FlowDiff{}

	oldNodes := make(map[string]Node)
	oldEdges := make(map[string]Edge)
	if oldFlow != nil {
		for _, n := range oldFlow.Nodes {
			oldNodes[n.ID] = n
		}
		for _, e := range oldFlow.Edges {
			oldEdges[e.ID] = e
		}
	}

	// 1. Nodes added or modified
	seen := make(map[string]bool, len(newFlow.Nodes))
	for _, n := range newFlow.Nodes {
		seen[n.ID] = true
		prev, ok := oldNodes[n.ID]
		if !ok || !reflect.DeepEqual(prev, n) {
			diff.UpsertedNodes = append(diff.UpsertedNodes, n)
		}
	}

	// 2. Nodes deleted
	if oldFlow != nil {
		for _, n := range oldFlow.Nodes {
			if !seen[n.ID] {
				diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
			}
		}
	}

	// 3. Edges. Edges are immutable once created, so only membership matters.
	seenEdges := make(map[string]bool, len(newFlow.Edges))
	for _, e := range newFlow.Edges {
		seenEdges[e.ID] = true
		if _, ok := oldEdges[e.ID]; !ok {
			diff.AddedEdges = append(diff.AddedEdges, e)
		}
	}
	if oldFlow != nil {
		for _, e := range oldFlow.Edges {
			if !seenEdges[e.ID] {
				diff.RemovedEdges = append(diff.RemovedEdges, e.ID)
			}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *FlowDiff) IsEmpty() bool {
	return len(d.UpsertedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0
}
