package interaction

import "github.com/aretw0/flowbuilder/pkg/domain"

// Button identifies the pointer button, using DOM numbering.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// Control is a per-node action button.
type Control string

const (
	ControlEdit      Control = "edit"
	ControlDuplicate Control = "duplicate"
	ControlDelete    Control = "delete"
)

// Target is the element under the pointer, resolved by the host from the last scene.
type Target interface {
	target()
}

// CanvasTarget is empty canvas.
type CanvasTarget struct{}

// NodeBodyTarget is a node box outside its controls and ports.
type NodeBodyTarget struct {
	NodeID string
}

// NodeControlTarget is one of a node's action buttons.
type NodeControlTarget struct {
	NodeID  string
	Control Control
}

// PortTarget is a port marker.
type PortTarget struct {
	NodeID string
	PortID string
}

// DisconnectTarget is the disconnect control drawn at an edge midpoint.
type DisconnectTarget struct {
	EdgeID string
}

func (CanvasTarget) target()      {}
func (NodeBodyTarget) target()    {}
func (NodeControlTarget) target() {}
func (PortTarget) target()        {}
func (DisconnectTarget) target()  {}

// Command is an input event handled by the Controller.
type Command interface {
	command()
}

// PointerDown is a button press at a screen position.
type PointerDown struct {
	Target Target
	Button Button
	Shift  bool
	Screen domain.Point
}

// PointerMove is pointer motion in screen space.
type PointerMove struct {
	Screen domain.Point
}

// PointerUp is a button release.
type PointerUp struct {
	Screen domain.Point
}

// Wheel is a scroll event; positive DeltaY scrolls down (zoom out).
type Wheel struct {
	Screen domain.Point
	DeltaY float64
}

// Zoom is a zoom button press. It zooms around the screen origin.
type Zoom struct {
	Delta float64
}

// ResetView restores the identity viewport.
type ResetView struct{}

// KeyDown is a key press. Only Escape is handled.
type KeyDown struct {
	Key string
}

// KeyEscape cancels a pending connection.
const KeyEscape = "Escape"

func (PointerDown) command() {}
func (PointerMove) command() {}
func (PointerUp) command()   {}
func (Wheel) command()       {}
func (Zoom) command()        {}
func (ResetView) command()   {}
func (KeyDown) command()     {}

// Effect is a side effect requested by the controller and carried out by the host.
type Effect interface {
	effect()
}

// OpenEditor asks the host to open the edit form of a node.
type OpenEditor struct {
	NodeID string
}

// Persist asks the host to schedule a debounced save.
type Persist struct{}

func (OpenEditor) effect() {}
func (Persist) effect()    {}

// Result describes the outcome of one command.
type Result struct {
	Mutated bool // The graph changed
	Notices []domain.Notice
	Effects []Effect
}

// ShouldPersist reports whether the result carries a Persist effect.
func (r Result) ShouldPersist() bool {
	for _, e := range r.Effects {
		if _, ok := e.(Persist); ok {
			return true
		}
	}
	return false
}
