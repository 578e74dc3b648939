package interaction

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/flowbuilder/pkg/domain"
)

// Wire is the JSON form of a Command sent by the browser client.
//
//	{"type": "pointer_down", "target": {"type": "port", "node_id": "n1", "port_id": "out"}, "screen": {"x": 10, "y": 20}}
type Wire struct {
	Type   string       `json:"type"`
	Target *WireTarget  `json:"target,omitempty"`
	Button Button       `json:"button,omitempty"`
	Shift  bool         `json:"shift,omitempty"`
	Screen domain.Point `json:"screen"`
	DeltaY float64      `json:"delta_y,omitempty"`
	Delta  float64      `json:"delta,omitempty"`
	Key    string       `json:"key,omitempty"`
}

// WireTarget is the JSON form of a Target.
type WireTarget struct {
	Type    string  `json:"type"`
	NodeID  string  `json:"node_id,omitempty"`
	PortID  string  `json:"port_id,omitempty"`
	EdgeID  string  `json:"edge_id,omitempty"`
	Control Control `json:"control,omitempty"`
}

// Decode parses a JSON command.
func Decode(data []byte) (Command, error) {
	var w Wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	return w.Command()
}

// Command converts the wire form into a typed command.
func (w Wire) Command() (Command, error) {
	switch w.Type {
	case "pointer_down":
		target, err := w.Target.target()
		if err != nil {
			return nil, err
		}
		return PointerDown{Target: target, Button: w.Button, Shift: w.Shift, Screen: w.Screen}, nil
	case "pointer_move":
		return PointerMove{Screen: w.Screen}, nil
	case "pointer_up":
		return PointerUp{Screen: w.Screen}, nil
	case "wheel":
		return Wheel{Screen: w.Screen, DeltaY: w.DeltaY}, nil
	case "zoom":
		return Zoom{Delta: w.Delta}, nil
	case "reset_view":
		return ResetView{}, nil
	case "key_down":
		return KeyDown{Key: w.Key}, nil
	}
	return nil, fmt.Errorf("unknown command type %q", w.Type)
}

func (t *WireTarget) target() (Target, error) {
	if t == nil {
		return CanvasTarget{}, nil
	}
	switch t.Type {
	case "", "canvas":
		return CanvasTarget{}, nil
	case "node_body":
		return NodeBodyTarget{NodeID: t.NodeID}, nil
	case "node_control":
		switch t.Control {
		case ControlEdit, ControlDuplicate, ControlDelete:
		default:
			return nil, fmt.Errorf("unknown node control %q", t.Control)
		}
		return NodeControlTarget{NodeID: t.NodeID, Control: t.Control}, nil
	case "port":
		return PortTarget{NodeID: t.NodeID, PortID: t.PortID}, nil
	case "disconnect":
		return DisconnectTarget{EdgeID: t.EdgeID}, nil
	}
	return nil, fmt.Errorf("unknown target type %q", t.Type)
}

// WireResult is the JSON form of a Result.
type WireResult struct {
	Mutated bool            `json:"mutated"`
	Notices []domain.Notice `json:"notices,omitempty"`
	Effects []WireEffect    `json:"effects,omitempty"`
}

// WireEffect is the JSON form of an Effect.
type WireEffect struct {
	Type   string `json:"type"` // open_editor | persist
	NodeID string `json:"node_id,omitempty"`
}

// Encode converts a Result into its wire form.
func (r Result) Encode() WireResult {
	out := WireResult{Mutated: r.Mutated, Notices: r.Notices}
	for _, e := range r.Effects {
		switch e := e.(type) {
		case OpenEditor:
			out.Effects = append(out.Effects, WireEffect{Type: "open_editor", NodeID: e.NodeID})
		case Persist:
			out.Effects = append(out.Effects, WireEffect{Type: "persist"})
		}
	}
	return out
}
