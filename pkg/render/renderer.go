// Package render builds the visual scene of a flow: node views per kind and
// edge curves derived from live node positions.
package render

import (
	"log/slog"
	"strings"

	"github.com/aretw0/flowbuilder/internal/logging"
	"github.com/aretw0/flowbuilder/pkg/canvas"
	"github.com/aretw0/flowbuilder/pkg/domain"
)

// DefaultPreviewRunes is the length of a manual message preview.
const DefaultPreviewRunes = 50

// Renderer builds scenes. It holds no per-flow state.
type Renderer struct {
	previewRunes int
	logger       *slog.Logger
}

// Option configures the Renderer.
type Option func(*Renderer)

// WithPreviewRunes sets the message preview length.
func WithPreviewRunes(n int) Option {
	return func(r *Renderer) {
		r.previewRunes = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New creates a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		previewRunes: DefaultPreviewRunes,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render rebuilds the whole scene. Edges are always derived from current node
// positions, never cached.
func (r *Renderer) Render(flow domain.Flow, st canvas.State) Scene {
	scene := Scene{
		Transform: st.Viewport,
		Nodes:     make([]NodeView, 0, len(flow.Nodes)),
		Edges:     make([]EdgeView, 0, len(flow.Edges)),
		Selected:  st.Selected,
	}

	nodes := make(map[string]domain.Node, len(flow.Nodes))
	for _, n := range flow.Nodes {
		nodes[n.ID] = n
		scene.Nodes = append(scene.Nodes, r.node(n))
	}

	scale := 1 / st.Viewport.Zoom
	for _, e := range flow.Edges {
		a, okA := anchor(nodes, e.From, e.FromPort)
		b, okB := anchor(nodes, e.To, e.ToPort)
		if !okA || !okB {
			r.logger.Warn("skipping edge with missing endpoint", "edge_id", e.ID)
			continue
		}
		view := edgeView(a, b)
		view.ID, view.From, view.To = e.ID, e.From, e.To
		view.Disconnect = &Affordance{Position: view.Midpoint, Scale: scale}
		scene.Edges = append(scene.Edges, view)
	}

	if st.Mode == canvas.ConnectingEdge && st.Pending != nil {
		if a, ok := anchor(nodes, st.Pending.NodeID, st.Pending.PortID); ok {
			preview := edgeView(a, st.Preview)
			preview.From = st.Pending.NodeID
			scene.Preview = &preview
		}
	}
	return scene
}

func anchor(nodes map[string]domain.Node, nodeID, portID string) (domain.Point, bool) {
	n, ok := nodes[nodeID]
	if !ok {
		return domain.Point{}, false
	}
	return domain.PortAnchor(n, portID)
}

func edgeView(a, b domain.Point) EdgeView {
	c := CurvePath(a, b)
	return EdgeView{Curve: c, Path: c.D(), Midpoint: c.At(0.5)}
}

func (r *Renderer) node(n domain.Node) NodeView {
	view := NodeView{
		ID:       n.ID,
		Kind:     n.Kind,
		Position: n.Position,
		Size:     domain.Dimensions(n.Kind),
		Title:    n.Payload.Title,
		Color:    n.Payload.Color,
		Controls: append([]string(nil), Controls...),
	}
	for _, p := range n.Ports() {
		a, _ := domain.PortAnchor(n, p.ID)
		view.Ports = append(view.Ports, PortView{ID: p.ID, Direction: p.Direction, Label: p.Label, Anchor: a})
	}

	p := n.Payload
	switch n.Kind {
	case domain.KindWelcome:
		view.Body.Text = p.Messages.Bilingual()
	case domain.KindIntent:
		view.Body.Chips = append([]string(nil), p.Intents...)
		view.Body.Text = p.Description
	case domain.KindHandoff:
		view.Body.Department = p.Department
		view.Body.Chips = append([]string(nil), p.Agents...)
	case domain.KindCondition:
		view.Body.Text = p.Expression
	case domain.KindMessage:
		if p.Mode == domain.MessageModeAI {
			view.Body.Badge = "AI"
			view.Body.Text = p.AssistantID
		} else {
			view.Body.Text = Truncate(p.Messages.Bilingual(), r.previewRunes)
		}
	}
	return view
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
