// Package interaction implements the pointer state machine of the canvas.
//
// One of four modes is active at a time: Idle, DraggingNode, PanningCanvas or
// ConnectingEdge. Pointer-down precedence is node control, then port, then node
// body, then pan triggers (middle button, right button, shift), then empty canvas.
package interaction

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/flowbuilder/internal/logging"
	"github.com/aretw0/flowbuilder/pkg/canvas"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/graph"
)

// Controller routes commands into graph and canvas mutations.
// It is not safe for concurrent use; the editor serializes access.
type Controller struct {
	model  *graph.Model
	canvas *canvas.Store
	logger *slog.Logger
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a controller over a model and a canvas store.
func New(model *graph.Model, store *canvas.Store, opts ...Option) *Controller {
	c := &Controller{
		model:  model,
		canvas: store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle applies one command.
func (c *Controller) Handle(cmd Command) Result {
	switch cmd := cmd.(type) {
	case PointerDown:
		return c.pointerDown(cmd)
	case PointerMove:
		return c.pointerMove(cmd)
	case PointerUp:
		return c.pointerUp(cmd)
	case Wheel:
		st := c.canvas.State()
		c.canvas.Dispatch(canvas.SetViewport{Viewport: st.Viewport.Wheel(cmd.DeltaY, cmd.Screen)})
	case Zoom:
		st := c.canvas.State()
		c.canvas.Dispatch(canvas.SetViewport{Viewport: st.Viewport.ZoomBy(cmd.Delta)})
	case ResetView:
		st := c.canvas.State()
		c.canvas.Dispatch(canvas.SetViewport{Viewport: st.Viewport.Reset()})
	case KeyDown:
		if cmd.Key == KeyEscape && c.canvas.State().Mode == canvas.ConnectingEdge {
			c.canvas.Dispatch(canvas.End{})
		}
	default:
		c.logger.Warn("unknown command", "type", fmt.Sprintf("%T", cmd))
	}
	return Result{}
}

func (c *Controller) pointerDown(cmd PointerDown) Result {
	st := c.canvas.State()
	world := st.Viewport.ToWorld(cmd.Screen)

	if st.Mode == canvas.ConnectingEdge {
		if res, handled := c.completeConnection(st, cmd.Target); handled {
			return res
		}
	}

	switch t := cmd.Target.(type) {
	case NodeControlTarget:
		return c.control(t)

	case PortTarget:
		node, ok := c.model.Node(t.NodeID)
		if !ok {
			return Result{}
		}
		if _, ok := domain.FindPort(node.Kind, t.PortID); !ok {
			return c.rejectConnection(fmt.Errorf("%w: %s has no port %q", domain.ErrUnknownPort, node.Kind, t.PortID))
		}
		c.canvas.Dispatch(canvas.BeginConnect{
			From:    canvas.PortRef{NodeID: t.NodeID, PortID: t.PortID},
			Preview: world,
		})
		return Result{}

	case NodeBodyTarget:
		node, ok := c.model.Node(t.NodeID)
		if !ok {
			return Result{}
		}
		c.canvas.Dispatch(canvas.BeginDrag{NodeID: node.ID, Offset: world.Sub(node.Position)})
		return Result{}

	case DisconnectTarget:
		if !c.model.DeleteEdge(t.EdgeID) {
			return Result{}
		}
		return Result{Mutated: true, Effects: []Effect{Persist{}}}
	}

	// Empty canvas, or any pan trigger that did not land on a node.
	if cmd.Button == ButtonMiddle || cmd.Button == ButtonSecondary || cmd.Shift || isCanvas(cmd.Target) {
		c.canvas.Dispatch(canvas.BeginPan{Pointer: cmd.Screen})
	}
	return Result{}
}

// completeConnection handles the second click of a pending connection.
// It reports false when the click should fall through to regular handling.
func (c *Controller) completeConnection(st canvas.State, target Target) (Result, bool) {
	from := *st.Pending

	switch t := target.(type) {
	case PortTarget:
		c.canvas.Dispatch(canvas.End{})
		if t.NodeID == from.NodeID {
			return Result{}, true
		}
		if _, err := c.model.CreateEdge(from.NodeID, from.PortID, t.NodeID, t.PortID); err != nil {
			return c.rejectConnection(err), true
		}
		return Result{Mutated: true, Effects: []Effect{Persist{}}}, true

	case NodeBodyTarget:
		if t.NodeID == from.NodeID {
			c.canvas.Dispatch(canvas.End{})
			return Result{}, true
		}
		// Another node: cancel and let the drag preempt.
		c.canvas.Dispatch(canvas.End{})
		return Result{}, false

	case nil, CanvasTarget:
		c.canvas.Dispatch(canvas.End{})
		return Result{}, true
	}

	c.canvas.Dispatch(canvas.End{})
	return Result{}, false
}

func (c *Controller) rejectConnection(err error) Result {
	c.logger.Debug("connection rejected", "err", err)
	return Result{Notices: []domain.Notice{RejectionNotice(err)}}
}

func (c *Controller) control(t NodeControlTarget) Result {
	switch t.Control {
	case ControlEdit:
		if _, ok := c.model.Node(t.NodeID); !ok {
			return Result{}
		}
		return Result{Effects: []Effect{OpenEditor{NodeID: t.NodeID}}}

	case ControlDuplicate:
		dup, err := c.model.DuplicateNode(t.NodeID)
		if err != nil {
			c.logger.Debug("duplicate failed", "node_id", t.NodeID, "err", err)
			return Result{}
		}
		c.canvas.Dispatch(canvas.Select{NodeID: dup.ID})
		return Result{Mutated: true, Effects: []Effect{Persist{}}}

	case ControlDelete:
		if !c.model.DeleteNode(t.NodeID) {
			return Result{}
		}
		if c.canvas.State().Selected == t.NodeID {
			c.canvas.Dispatch(canvas.Select{})
		}
		return Result{Mutated: true, Effects: []Effect{Persist{}}}
	}
	c.logger.Warn("unknown node control", "control", t.Control)
	return Result{}
}

func (c *Controller) pointerMove(cmd PointerMove) Result {
	st := c.canvas.State()
	switch st.Mode {
	case canvas.DraggingNode:
		pos := st.Viewport.ToWorld(cmd.Screen).Sub(st.DragOffset)
		if err := c.model.MoveNode(st.DragNodeID, pos); err != nil {
			// Node deleted mid-drag.
			c.canvas.Dispatch(canvas.End{})
			return Result{}
		}
		return Result{Mutated: true}
	case canvas.PanningCanvas:
		c.canvas.Dispatch(canvas.PanTo{Pointer: cmd.Screen})
	case canvas.ConnectingEdge:
		c.canvas.Dispatch(canvas.MovePreview{Preview: st.Viewport.ToWorld(cmd.Screen)})
	}
	return Result{}
}

func (c *Controller) pointerUp(cmd PointerUp) Result {
	st := c.canvas.State()
	switch st.Mode {
	case canvas.DraggingNode:
		c.canvas.Dispatch(canvas.End{})
		pos := st.Viewport.ToWorld(cmd.Screen).Sub(st.DragOffset)
		if err := c.model.MoveNode(st.DragNodeID, pos); err != nil {
			return Result{}
		}
		return Result{Mutated: true, Effects: []Effect{Persist{}}}
	case canvas.PanningCanvas:
		c.canvas.Dispatch(canvas.End{})
	}
	// ConnectingEdge survives pointer-up until the second port click.
	return Result{}
}

func isCanvas(t Target) bool {
	switch t.(type) {
	case nil, CanvasTarget:
		return true
	}
	return false
}

// RejectionNotice converts a refused edge creation into a validation_rejection notice.
func RejectionNotice(err error) domain.Notice {
	return domain.NewNotice(domain.NoticeValidationRejection, domain.LevelError, rejectionMessage(err))
}

func rejectionMessage(err error) string {
	switch {
	case !domain.IsValidationRejection(err):
		return "Could not connect these nodes."
	case errors.Is(err, domain.ErrSelfLoop):
		return "A node cannot be connected to itself."
	case errors.Is(err, domain.ErrPortDirection):
		return "Connections must go from an output port to an input port."
	default:
		return "That port does not exist on this node."
	}
}
