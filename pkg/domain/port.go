package domain

// PortDirection represents the direction of a port.
type PortDirection string

const (
	PortInput  PortDirection = "input"
	PortOutput PortDirection = "output"
)

// Standard port ids.
const (
	PortIn    = "in"
	PortOut   = "out"
	PortTrue  = "true"
	PortFalse = "false"
)

// Port is a named attachment point on a node.
type Port struct {
	ID        string        `json:"id"`
	Direction PortDirection `json:"direction"`
	Label     string        `json:"label,omitempty"`
}

var (
	inputPort  = Port{ID: PortIn, Direction: PortInput}
	outputPort = Port{ID: PortOut, Direction: PortOutput}
)

// PortsFor derives the port set of a kind. Ports are never persisted.
func PortsFor(kind Kind) []Port {
	switch kind {
	case KindWelcome:
		return []Port{outputPort}
	case KindIntent, KindMessage:
		return []Port{inputPort, outputPort}
	case KindCondition:
		return []Port{
			inputPort,
			{ID: PortTrue, Direction: PortOutput, Label: "true"},
			{ID: PortFalse, Direction: PortOutput, Label: "false"},
		}
	case KindHandoff:
		return []Port{inputPort}
	default:
		return nil
	}
}

// FindPort looks up a port of a kind by id.
func FindPort(kind Kind, portID string) (Port, bool) {
	for _, p := range PortsFor(kind) {
		if p.ID == portID {
			return p, true
		}
	}
	return Port{}, false
}

// DefaultOutput returns the first output port id of a kind, or "" if it has none.
func DefaultOutput(kind Kind) string {
	for _, p := range PortsFor(kind) {
		if p.Direction == PortOutput {
			return p.ID
		}
	}
	return ""
}

// Dimensions returns the declared box size of a node kind.
// Port anchors and hit boxes are derived from it, so the layout has a single source of truth.
func Dimensions(kind Kind) Size {
	switch kind {
	case KindWelcome, KindHandoff:
		return Size{W: 220, H: 120}
	case KindCondition:
		return Size{W: 200, H: 96}
	default:
		return Size{W: 200, H: 110}
	}
}

// PortAnchor computes the world-space anchor of a port.
// Inputs sit on the left edge, outputs on the right edge, spread evenly along the height.
func PortAnchor(n Node, portID string) (Point, bool) {
	port, ok := FindPort(n.Kind, portID)
	if !ok {
		return Point{}, false
	}

	size := Dimensions(n.Kind)
	var same []Port
	for _, p := range PortsFor(n.Kind) {
		if p.Direction == port.Direction {
			same = append(same, p)
		}
	}
	idx := 0
	for i, p := range same {
		if p.ID == portID {
			idx = i
			break
		}
	}
	y := n.Position.Y + size.H*float64(idx+1)/float64(len(same)+1)

	x := n.Position.X
	if port.Direction == PortOutput {
		x += size.W
	}
	return Point{X: x, Y: y}, true
}

// Contains reports whether the world point p lies within the node box.
func (n Node) Contains(p Point) bool {
	size := Dimensions(n.Kind)
	return p.X >= n.Position.X && p.X <= n.Position.X+size.W &&
		p.Y >= n.Position.Y && p.Y <= n.Position.Y+size.H
}
