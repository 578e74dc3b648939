package graph_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNode(t *testing.T, m *graph.Model, kind domain.Kind, title string) domain.Node {
	t.Helper()
	n, err := m.CreateNode(kind, domain.Point{X: 10, Y: 20}, domain.Payload{Title: title})
	require.NoError(t, err)
	return n
}

func TestCreateEdge_DirectionRule(t *testing.T) {
	m := graph.New()
	welcome := mustNode(t, m, domain.KindWelcome, "Welcome")
	intent := mustNode(t, m, domain.KindIntent, "Intent")
	message := mustNode(t, m, domain.KindMessage, "Message")
	cond := mustNode(t, m, domain.KindCondition, "Cond")
	handoff := mustNode(t, m, domain.KindHandoff, "Support")

	tests := []struct {
		name     string
		from     string
		fromPort string
		to       string
		toPort   string
		wantErr  error
	}{
		{"output to input", welcome.ID, domain.PortOut, intent.ID, domain.PortIn, nil},
		{"condition true branch", cond.ID, domain.PortTrue, handoff.ID, domain.PortIn, nil},
		{"condition false branch", cond.ID, domain.PortFalse, message.ID, domain.PortIn, nil},
		{"input to input", intent.ID, domain.PortIn, message.ID, domain.PortIn, domain.ErrPortDirection},
		{"output to output", intent.ID, domain.PortOut, message.ID, domain.PortOut, domain.ErrPortDirection},
		{"self loop", intent.ID, domain.PortOut, intent.ID, domain.PortIn, domain.ErrSelfLoop},
		{"handoff has no output", handoff.ID, domain.PortOut, message.ID, domain.PortIn, domain.ErrUnknownPort},
		{"welcome has no input", intent.ID, domain.PortOut, welcome.ID, domain.PortIn, domain.ErrUnknownPort},
		{"missing node", "ghost", domain.PortOut, intent.ID, domain.PortIn, domain.ErrNodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(m.Snapshot().Edges)
			edge, err := m.CreateEdge(tt.from, tt.fromPort, tt.to, tt.toPort)
			after := len(m.Snapshot().Edges)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, after, "rejected edge must not change the graph")
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, edge.ID)
			assert.Equal(t, before+1, after)
		})
	}
}

func TestDeleteNode_CascadesEdges(t *testing.T) {
	m := graph.New()
	a := mustNode(t, m, domain.KindWelcome, "A")
	b := mustNode(t, m, domain.KindIntent, "B")
	c := mustNode(t, m, domain.KindHandoff, "C")

	_, err := m.CreateEdge(a.ID, domain.PortOut, b.ID, domain.PortIn)
	require.NoError(t, err)
	_, err = m.CreateEdge(b.ID, domain.PortOut, c.ID, domain.PortIn)
	require.NoError(t, err)

	assert.True(t, m.DeleteNode(b.ID))

	flow := m.Snapshot()
	assert.Empty(t, flow.Edges)
	require.Len(t, flow.Nodes, 2)
	assert.Equal(t, a.ID, flow.Nodes[0].ID)
	assert.Equal(t, c.ID, flow.Nodes[1].ID)

	assert.False(t, m.DeleteNode(b.ID), "second delete is a no-op")
}

func TestDuplicateNode(t *testing.T) {
	m := graph.New()
	a, err := m.CreateNode(domain.KindIntent, domain.Point{X: 100, Y: 40}, domain.Payload{
		Title:   "Billing",
		Intents: []string{"invoice"},
	})
	require.NoError(t, err)
	h := mustNode(t, m, domain.KindHandoff, "Finance")
	_, err = m.CreateEdge(a.ID, domain.PortOut, h.ID, domain.PortIn)
	require.NoError(t, err)

	dup, err := m.DuplicateNode(a.ID)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, dup.ID)
	assert.Equal(t, "Billing (Copy)", dup.Payload.Title)
	assert.Equal(t, a.Position.Add(graph.DuplicateOffset), dup.Position)
	assert.Equal(t, a.Kind, dup.Kind)
	assert.Len(t, m.Snapshot().Edges, 1, "duplicate never copies edges")

	// Payload is a deep copy.
	dup.Payload.Intents[0] = "mutated"
	orig, _ := m.Node(a.ID)
	assert.Equal(t, "invoice", orig.Payload.Intents[0])

	_, err = m.DuplicateNode("ghost")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestDuplicateNode_Untitled(t *testing.T) {
	m := graph.New()
	n := mustNode(t, m, domain.KindCondition, "")
	dup, err := m.DuplicateNode(n.ID)
	require.NoError(t, err)
	assert.Empty(t, dup.Payload.Title)
}

func TestMoveNode_DoesNotTouchEdges(t *testing.T) {
	m := graph.New()
	a := mustNode(t, m, domain.KindWelcome, "A")
	b := mustNode(t, m, domain.KindIntent, "B")
	edge, err := m.CreateEdge(a.ID, domain.PortOut, b.ID, domain.PortIn)
	require.NoError(t, err)

	require.NoError(t, m.MoveNode(a.ID, domain.Point{X: 500, Y: 600}))

	moved, _ := m.Node(a.ID)
	assert.Equal(t, domain.Point{X: 500, Y: 600}, moved.Position)
	assert.Equal(t, []domain.Edge{edge}, m.Snapshot().Edges)

	assert.ErrorIs(t, m.MoveNode("ghost", domain.Point{}), domain.ErrNodeNotFound)
}

func TestDeleteEdge_Idempotent(t *testing.T) {
	m := graph.New()
	a := mustNode(t, m, domain.KindWelcome, "A")
	b := mustNode(t, m, domain.KindIntent, "B")
	edge, err := m.CreateEdge(a.ID, domain.PortOut, b.ID, domain.PortIn)
	require.NoError(t, err)

	assert.True(t, m.DeleteEdge(edge.ID))
	assert.False(t, m.DeleteEdge(edge.ID))
	assert.Empty(t, m.Snapshot().Edges)
}

func TestUpdatePayload_NormalizesIntents(t *testing.T) {
	m := graph.New()
	n := mustNode(t, m, domain.KindIntent, "Sales")
	updated, err := m.UpdatePayload(n.ID, domain.Payload{Title: "Sales", Intents: []string{"Buy", "buy ", "price"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"buy", "price"}, updated.Payload.Intents)
	assert.Equal(t, domain.KindIntent, updated.Kind)
}

func TestReplace_RepairsDanglingEdges(t *testing.T) {
	flow := domain.NewFlow(time.Now())
	flow.Nodes = []domain.Node{
		{ID: "w", Kind: domain.KindWelcome},
		{ID: "i", Kind: domain.KindIntent},
	}
	flow.Edges = []domain.Edge{
		{ID: "ok", From: "w", FromPort: domain.PortOut, To: "i", ToPort: domain.PortIn},
		{ID: "dangling", From: "i", FromPort: domain.PortOut, To: "gone", ToPort: domain.PortIn},
	}

	m := graph.New()
	problems := m.Replace(flow)
	assert.Len(t, problems, 1)
	require.Len(t, m.Snapshot().Edges, 1)
	assert.Equal(t, "ok", m.Snapshot().Edges[0].ID)
	assert.Error(t, graph.Validate(flow))
}

func TestRepair_NormalizesKind(t *testing.T) {
	flow := domain.NewFlow(time.Now())
	flow.Nodes = []domain.Node{
		{ID: "w", Kind: "Welcome"},
		{ID: "m", Kind: " MESSAGE"},
	}
	flow.Edges = []domain.Edge{
		{ID: "e", From: "w", FromPort: domain.PortOut, To: "m", ToPort: domain.PortIn},
	}

	repaired, problems := graph.Repair(flow)
	assert.Empty(t, problems)
	require.Len(t, repaired.Nodes, 2)
	assert.Equal(t, domain.KindWelcome, repaired.Nodes[0].Kind)
	assert.Equal(t, domain.KindMessage, repaired.Nodes[1].Kind)
	assert.Len(t, repaired.Edges, 1)
	assert.NoError(t, graph.Validate(flow))
}

func TestCreateNode_NormalizesKind(t *testing.T) {
	m := graph.New()
	n, err := m.CreateNode("Intent", domain.Point{}, domain.Payload{Intents: []string{"Menu"}})
	require.NoError(t, err)
	assert.Equal(t, domain.KindIntent, n.Kind)
	assert.Equal(t, []string{"menu"}, n.Payload.Intents)

	_, err = m.CreateNode("teleport", domain.Point{}, domain.Payload{})
	assert.ErrorIs(t, err, domain.ErrInvalidKind)
}

func TestDefaultFlow(t *testing.T) {
	depts := []domain.Department{
		{ID: "support", Name: "Support", Color: "#10b981", AgentIDs: []string{"a1", "a2"}},
		{ID: "sales", Name: "Sales", Color: "#3b82f6"},
	}
	flow := graph.DefaultFlow(depts, time.Now())

	assert.Len(t, flow.NodesOfKind(domain.KindWelcome), 1)
	assert.Len(t, flow.NodesOfKind(domain.KindIntent), 1)
	handoffs := flow.NodesOfKind(domain.KindHandoff)
	require.Len(t, handoffs, 2)
	assert.Equal(t, []string{"a1", "a2"}, handoffs[0].Payload.Agents)
	assert.Equal(t, "#10b981", handoffs[0].Payload.Color)
	assert.Len(t, flow.Edges, 3)
	assert.NoError(t, graph.Validate(flow))
}

func TestIDsAreNeverReused(t *testing.T) {
	m := graph.New()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := mustNode(t, m, domain.KindMessage, fmt.Sprintf("m%d", i))
		assert.False(t, seen[n.ID])
		seen[n.ID] = true
		m.DeleteNode(n.ID)
	}
}

func TestNodesAndEdges_ReturnCopies(t *testing.T) {
	m := graph.New()
	a := mustNode(t, m, domain.KindIntent, "A")
	b := mustNode(t, m, domain.KindMessage, "B")
	_, err := m.CreateEdge(a.ID, domain.PortOut, b.ID, domain.PortIn)
	require.NoError(t, err)

	nodes := m.Nodes()
	require.Len(t, nodes, 2)
	nodes[0].Payload.Title = "mutated"
	edges := m.Edges()
	require.Len(t, edges, 1)
	edges[0].To = "elsewhere"

	got, _ := m.Node(a.ID)
	assert.Equal(t, "A", got.Payload.Title)
	assert.Equal(t, b.ID, m.Edges()[0].To)
}
