package render

import (
	"fmt"

	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/viewport"
)

// Controls is the fixed control set drawn on every node.
var Controls = []string{"edit", "duplicate", "delete"}

// Scene is the complete visual state of the canvas. Positions are in world space;
// the host applies Transform once to the whole node layer.
type Scene struct {
	Transform viewport.Viewport `json:"transform"`
	Nodes     []NodeView        `json:"nodes"`
	Edges     []EdgeView        `json:"edges"`
	Preview   *EdgeView         `json:"preview,omitempty"` // Floating edge while connecting
	Selected  string            `json:"selected,omitempty"`
}

// NodeView is the rendered form of one node.
type NodeView struct {
	ID       string       `json:"id"`
	Kind     domain.Kind  `json:"kind"`
	Position domain.Point `json:"position"`
	Size     domain.Size  `json:"size"`
	Title    string       `json:"title"`
	Color    string       `json:"color,omitempty"`
	Controls []string     `json:"controls"`
	Ports    []PortView   `json:"ports"`
	Body     Body         `json:"body"`
}

// PortView is a port marker with its world-space anchor.
type PortView struct {
	ID        string               `json:"id"`
	Direction domain.PortDirection `json:"direction"`
	Label     string               `json:"label,omitempty"`
	Anchor    domain.Point         `json:"anchor"`
}

// Body is the kind-specific content of a node.
type Body struct {
	Text       string   `json:"text,omitempty"`
	Chips      []string `json:"chips,omitempty"`
	Department string   `json:"department,omitempty"`
	Badge      string   `json:"badge,omitempty"`
}

// EdgeView is a rendered edge curve.
type EdgeView struct {
	ID         string       `json:"id,omitempty"`
	From       string       `json:"from,omitempty"`
	To         string       `json:"to,omitempty"`
	Curve      Curve        `json:"curve"`
	Path       string       `json:"path"`
	Midpoint   domain.Point `json:"midpoint"`
	Disconnect *Affordance  `json:"disconnect,omitempty"`
}

// Affordance is an interactive control counter-scaled against the zoom.
type Affordance struct {
	Position domain.Point `json:"position"`
	Scale    float64      `json:"scale"`
}

// Curve is a cubic bezier.
type Curve struct {
	Start domain.Point `json:"start"`
	C1    domain.Point `json:"c1"`
	C2    domain.Point `json:"c2"`
	End   domain.Point `json:"end"`
}

// CurvePath computes the S-curve between two anchors: both control points sit on the
// horizontal midpoint, at the height of their endpoint.
func CurvePath(a, b domain.Point) Curve {
	mid := (a.X + b.X) / 2
	return Curve{
		Start: a,
		C1:    domain.Point{X: mid, Y: a.Y},
		C2:    domain.Point{X: mid, Y: b.Y},
		End:   b,
	}
}

// At evaluates the curve at t in [0, 1].
func (c Curve) At(t float64) domain.Point {
	u := 1 - t
	w0, w1, w2, w3 := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return domain.Point{
		X: w0*c.Start.X + w1*c.C1.X + w2*c.C2.X + w3*c.End.X,
		Y: w0*c.Start.Y + w1*c.C1.Y + w2*c.C2.Y + w3*c.End.Y,
	}
}

// D renders the curve as an SVG path.
func (c Curve) D() string {
	return fmt.Sprintf("M %s C %s, %s, %s", pt(c.Start), pt(c.C1), pt(c.C2), pt(c.End))
}

func pt(p domain.Point) string {
	return fmt.Sprintf("%g %g", p.X, p.Y)
}
