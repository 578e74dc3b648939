package canvas

import (
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/viewport"
)

// Action is a state transition applied by Store.Dispatch.
type Action interface {
	apply(State) State
}

// BeginDrag enters DraggingNode, preempting any other mode.
type BeginDrag struct {
	NodeID string
	Offset domain.Point
}

func (a BeginDrag) apply(s State) State {
	s = reset(s)
	s.Mode = DraggingNode
	s.DragNodeID = a.NodeID
	s.DragOffset = a.Offset
	s.Selected = a.NodeID
	return s
}

// BeginPan enters PanningCanvas.
type BeginPan struct {
	Pointer domain.Point // Screen space
}

func (a BeginPan) apply(s State) State {
	s = reset(s)
	s.Mode = PanningCanvas
	s.LastPointer = a.Pointer
	return s
}

// BeginConnect enters ConnectingEdge from an origin port.
type BeginConnect struct {
	From    PortRef
	Preview domain.Point // World space
}

func (a BeginConnect) apply(s State) State {
	s = reset(s)
	s.Mode = ConnectingEdge
	from := a.From
	s.Pending = &from
	s.Preview = a.Preview
	return s
}

// PanTo pans by the delta between the last pointer and Pointer (screen space).
type PanTo struct {
	Pointer domain.Point
}

func (a PanTo) apply(s State) State {
	s.Viewport = s.Viewport.PanBy(a.Pointer.Sub(s.LastPointer))
	s.LastPointer = a.Pointer
	return s
}

// MovePreview moves the floating end of the preview edge (world space).
type MovePreview struct {
	Preview domain.Point
}

func (a MovePreview) apply(s State) State {
	s.Preview = a.Preview
	return s
}

// End returns to Idle, discarding drag/pan/connect bookkeeping.
type End struct{}

func (End) apply(s State) State {
	return reset(s)
}

// SetViewport replaces the viewport (zoom, reset).
type SetViewport struct {
	Viewport viewport.Viewport
}

func (a SetViewport) apply(s State) State {
	s.Viewport = a.Viewport
	return s
}

// Select marks a node as selected; an empty id clears the selection.
type Select struct {
	NodeID string
}

func (a Select) apply(s State) State {
	s.Selected = a.NodeID
	return s
}

func reset(s State) State {
	s.Mode = Idle
	s.DragNodeID = ""
	s.DragOffset = domain.Point{}
	s.Pending = nil
	s.Preview = domain.Point{}
	return s
}
