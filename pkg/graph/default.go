package graph

import (
	"fmt"
	"time"

	"github.com/aretw0/flowbuilder/pkg/domain"
)

// Layout of the built-in flow.
var (
	welcomeAt      = domain.Point{X: 80, Y: 200}
	intentAt       = domain.Point{X: 400, Y: 200}
	handoffColumnX = 720.0
	handoffSpacing = 150.0
)

// DefaultFlow builds the built-in flow used when nothing was saved (or the save is corrupt):
// one Welcome node, one Intent node, and one Handoff node per department, wired
// Welcome -> Intent -> each Handoff.
func DefaultFlow(departments []domain.Department, now time.Time) domain.Flow {
	m := New()
	m.flow = domain.NewFlow(now)

	welcome, _ := m.CreateNode(domain.KindWelcome, welcomeAt, domain.Payload{
		Title: "Welcome",
		Messages: domain.Messages{
			English: "Hi! How can we help you today?",
			Swedish: "Hej! Hur kan vi hjälpa dig idag?",
		},
	})
	intent, _ := m.CreateNode(domain.KindIntent, intentAt, domain.Payload{
		Title:       "Customer Intent",
		Intents:     []string{"menu", "billing", "technical", "delivery", "sales", "general"},
		Description: "Routes the visitor to the right department",
	})
	_, _ = m.CreateEdge(welcome.ID, domain.PortOut, intent.ID, domain.PortIn)

	top := intentAt.Y - handoffSpacing*float64(len(departments)-1)/2
	for i, d := range departments {
		h, _ := m.CreateNode(domain.KindHandoff, domain.Point{X: handoffColumnX, Y: top + handoffSpacing*float64(i)}, HandoffPayload(d))
		_, _ = m.CreateEdge(intent.ID, domain.PortOut, h.ID, domain.PortIn)
	}
	return m.Snapshot()
}

// HandoffPayload builds a Handoff payload that inherits the department's agents and color.
func HandoffPayload(d domain.Department) domain.Payload {
	return domain.Payload{
		Title:          d.Name,
		Department:     d.ID,
		Agents:         append([]string(nil), d.AgentIDs...),
		Color:          d.Color,
		HandoffMessage: fmt.Sprintf("Connecting you with %s...", d.Name),
	}
}
