package graph

import (
	"fmt"

	"github.com/aretw0/flowbuilder/pkg/domain"
)

// ValidationError represents a single integrity failure of a loaded flow.
type ValidationError struct {
	Ref    string // Node or edge id
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Ref, e.Reason)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Validate checks the integrity of a flow: known kinds, unique ids, and edges that
// reference existing nodes through valid output -> input ports.
// Returns nil if the flow is valid, or an *AggregateError.
func Validate(flow domain.Flow) error {
	_, problems := Repair(flow)
	if len(problems) == 0 {
		return nil
	}
	return &AggregateError{Errors: problems}
}

// Repair returns a copy of flow with invalid nodes and edges dropped, plus the list of problems found.
func Repair(flow domain.Flow) (domain.Flow, []error) {
	var problems []error
	out := flow.Clone()
	out.Nodes = out.Nodes[:0]
	out.Edges = out.Edges[:0]

	nodes := make(map[string]domain.Node, len(flow.Nodes))
	for _, n := range flow.Nodes {
		if n.ID == "" {
			problems = append(problems, &ValidationError{Ref: "(node)", Reason: "missing id"})
			continue
		}
		kind, err := domain.ParseKind(string(n.Kind))
		if err != nil {
			problems = append(problems, &ValidationError{Ref: n.ID, Reason: err.Error()})
			continue
		}
		n.Kind = kind
		if _, dup := nodes[n.ID]; dup {
			problems = append(problems, &ValidationError{Ref: n.ID, Reason: "duplicate node id"})
			continue
		}
		nodes[n.ID] = n
		out.Nodes = append(out.Nodes, n.Clone())
	}

	edgeIDs := make(map[string]bool, len(flow.Edges))
	for _, e := range flow.Edges {
		if reason := edgeProblem(e, nodes, edgeIDs); reason != "" {
			problems = append(problems, &ValidationError{Ref: e.ID, Reason: reason})
			continue
		}
		edgeIDs[e.ID] = true
		out.Edges = append(out.Edges, e)
	}

	if out.Metadata.Version == "" {
		out.Metadata.Version = domain.SchemaVersion
	}
	return out, problems
}

func edgeProblem(e domain.Edge, nodes map[string]domain.Node, seen map[string]bool) string {
	if e.ID == "" {
		return "missing edge id"
	}
	if seen[e.ID] {
		return "duplicate edge id"
	}
	from, ok := nodes[e.From]
	if !ok {
		return fmt.Sprintf("dangling source %q", e.From)
	}
	to, ok := nodes[e.To]
	if !ok {
		return fmt.Sprintf("dangling target %q", e.To)
	}
	if e.From == e.To {
		return "self loop"
	}
	src, ok := domain.FindPort(from.Kind, e.FromPort)
	if !ok || src.Direction != domain.PortOutput {
		return fmt.Sprintf("invalid source port %q", e.FromPort)
	}
	dst, ok := domain.FindPort(to.Kind, e.ToPort)
	if !ok || dst.Direction != domain.PortInput {
		return fmt.Sprintf("invalid target port %q", e.ToPort)
	}
	return ""
}
