package domain

import (
	"fmt"
	"strings"
)

// Kind defines the variant of a node. It is immutable after creation.
type Kind string

const (
	// KindWelcome opens the conversation. It only has an output port.
	KindWelcome Kind = "welcome"
	// KindIntent matches a set of intent tags.
	KindIntent Kind = "intent"
	// KindHandoff routes the conversation to a department. It only has an input port.
	KindHandoff Kind = "handoff"
	// KindCondition branches on an opaque expression into "true" and "false" outputs.
	KindCondition Kind = "condition"
	// KindMessage sends an AI-backed or manual message.
	KindMessage Kind = "message"
)

// Kinds lists every supported node kind in palette order.
var Kinds = []Kind{KindWelcome, KindIntent, KindHandoff, KindCondition, KindMessage}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// MessageMode selects how a Message node produces its text.
type MessageMode string

const (
	MessageModeAI     MessageMode = "ai"
	MessageModeManual MessageMode = "manual"
)

// Messages holds per-language message text.
type Messages struct {
	English  string `json:"english,omitempty" yaml:"english,omitempty" mapstructure:"english"`
	Swedish  string `json:"swedish,omitempty" yaml:"swedish,omitempty" mapstructure:"swedish"`
	Combined string `json:"combined,omitempty" yaml:"combined,omitempty" mapstructure:"combined"` // Optional bilingual rendering
}

// Bilingual returns the combined rendering, or builds one from both languages.
func (m Messages) Bilingual() string {
	if m.Combined != "" {
		return m.Combined
	}
	switch {
	case m.English != "" && m.Swedish != "":
		return m.Swedish + "\n\n" + m.English
	case m.English != "":
		return m.English
	default:
		return m.Swedish
	}
}

// Payload is the kind-specific data of a node.
// Only the fields relevant to the node kind are populated; it is mutated through the edit form.
type Payload struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`

	// Welcome and manual Message
	Messages Messages `json:"messages,omitempty" yaml:"messages,omitempty" mapstructure:"messages"`

	// Intent
	Intents     []string `json:"intents,omitempty" yaml:"intents,omitempty" mapstructure:"intents"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`

	// Handoff
	Department     string   `json:"department,omitempty" yaml:"department,omitempty" mapstructure:"department"`
	Agents         []string `json:"agents,omitempty" yaml:"agents,omitempty" mapstructure:"agents"`
	Color          string   `json:"color,omitempty" yaml:"color,omitempty" mapstructure:"color"`
	HandoffMessage string   `json:"handoff_message,omitempty" yaml:"handoff_message,omitempty" mapstructure:"handoff_message"`

	// Condition. Opaque to the editor: never parsed or validated.
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty" mapstructure:"expression"`

	// Message
	Mode        MessageMode `json:"mode,omitempty" yaml:"mode,omitempty" mapstructure:"mode"`
	AssistantID string      `json:"assistant_id,omitempty" yaml:"assistant_id,omitempty" mapstructure:"assistant_id"`
	Prompt      string      `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`
}

// Clone returns a deep copy of the payload.
func (p Payload) Clone() Payload {
	out := p
	if p.Intents != nil {
		out.Intents = append([]string(nil), p.Intents...)
	}
	if p.Agents != nil {
		out.Agents = append([]string(nil), p.Agents...)
	}
	return out
}

// NormalizeIntents trims, lowercases and deduplicates intent tags.
// Intent tags have set semantics, so order is kept only for stable display.
func NormalizeIntents(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Node represents a vertex in the flow graph.
type Node struct {
	ID       string  `json:"id" yaml:"id"`
	Kind     Kind    `json:"kind" yaml:"kind"`
	Position Point   `json:"position" yaml:"position"` // World space
	Payload  Payload `json:"payload" yaml:"payload"`
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Payload = n.Payload.Clone()
	return n
}

// Ports returns the port set derived from the node kind.
func (n Node) Ports() []Port {
	return PortsFor(n.Kind)
}
