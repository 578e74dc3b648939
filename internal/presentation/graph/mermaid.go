package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowbuilder/pkg/domain"
)

// GraphOverlay contains editor state to visualize on the graph.
type GraphOverlay struct {
	Highlighted []string // e.g. nodes touched by the last edit
	Selected    string
}

// GenerateMermaid produces a Mermaid flowchart of a flow.
// It applies semantic styling per kind:
// - Welcome: ((Circle))
// - Intent: {{Hexagon}}
// - Condition: {Rhombus}
// - Handoff: [[Subroutine]]
// - Message: [Rectangle]
// Edges leaving a Condition are labelled with their port.
func GenerateMermaid(flow domain.Flow, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range flow.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Kind {
		case domain.KindWelcome:
			opener, closer = "((", "))"
		case domain.KindIntent:
			opener, closer = "{{", "}}"
		case domain.KindCondition:
			opener, closer = "{", "}"
		case domain.KindHandoff:
			opener, closer = "[[", "]]"
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, nodeLabel(node), closer))
	}

	for _, e := range flow.Edges {
		from, to := sanitizeMermaidID(e.From), sanitizeMermaidID(e.To)
		arrow := "-->"
		if e.FromPort != domain.PortOut && e.FromPort != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(e.FromPort))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", from, arrow, to))
	}

	// Department colors on handoffs
	for _, node := range flow.NodesOfKind(domain.KindHandoff) {
		if node.Payload.Color != "" {
			sb.WriteString(fmt.Sprintf("    style %s stroke:%s,stroke-width:2px\n", sanitizeMermaidID(node.ID), node.Payload.Color))
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef highlighted fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Highlighted {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s highlighted;\n", safeID))
			}
		}

		if overlay.Selected != "" {
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", sanitizeMermaidID(overlay.Selected)))
		}
	}

	return sb.String()
}

func nodeLabel(n domain.Node) string {
	label := n.Payload.Title
	if label == "" {
		label = string(n.Kind)
	}
	label = escapeLabel(label)
	switch n.Kind {
	case domain.KindIntent:
		if len(n.Payload.Intents) > 0 {
			label += " <br/> " + escapeLabel(strings.Join(n.Payload.Intents, ", "))
		}
	case domain.KindCondition:
		if n.Payload.Expression != "" {
			label += " <br/> " + escapeLabel(n.Payload.Expression)
		}
	case domain.KindMessage:
		if n.Payload.Mode == domain.MessageModeAI {
			label += " <br/> 🤖 AI"
		}
	}
	return label
}

// escapeLabel replaces double quotes, which terminate Mermaid labels.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
