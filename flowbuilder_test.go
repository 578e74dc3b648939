package flowbuilder_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/flowbuilder"
	"github.com/aretw0/flowbuilder/pkg/adapters/memory"
	"github.com/aretw0/flowbuilder/pkg/catalog"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/interaction"
	"github.com/aretw0/flowbuilder/pkg/persistence"
	"github.com/aretw0/flowbuilder/pkg/ports"
	"github.com/aretw0/flowbuilder/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor(t *testing.T, opts ...flowbuilder.Option) (*flowbuilder.Editor, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	base := []flowbuilder.Option{
		flowbuilder.WithStore(store),
		flowbuilder.WithDebounce(time.Hour), // Tests flush explicitly
		flowbuilder.WithTypingDelay(0),
	}
	ed, err := flowbuilder.New(append(base, opts...)...)
	require.NoError(t, err)
	return ed, store
}

func TestEditor_LoadDefault(t *testing.T) {
	ed, _ := newEditor(t)
	src := ed.Load(context.Background())

	assert.Equal(t, persistence.SourceDefault, src)
	flow := ed.Flow()
	assert.Len(t, flow.Nodes, 2+len(catalog.DefaultDepartments))
	assert.Len(t, ed.Scene().Nodes, len(flow.Nodes))
	assert.Len(t, ed.Scene().Edges, len(flow.Edges))
}

func TestEditor_DragPersistsOnRelease(t *testing.T) {
	ctx := context.Background()
	ed, store := newEditor(t)

	node, err := ed.CreateNode(domain.KindMessage, domain.Point{X: 100, Y: 100}, domain.Payload{Title: "Hours"})
	require.NoError(t, err)
	require.NoError(t, ed.Flush(ctx))

	ed.Handle(interaction.PointerDown{Target: interaction.NodeBodyTarget{NodeID: node.ID}, Screen: domain.Point{X: 110, Y: 110}})
	for i := 1; i <= 10; i++ {
		res := ed.Handle(interaction.PointerMove{Screen: domain.Point{X: 110 + float64(i)*10, Y: 110}})
		assert.False(t, res.ShouldPersist(), "moves are not persisted mid-drag")
	}
	res := ed.Handle(interaction.PointerUp{Screen: domain.Point{X: 210, Y: 110}})
	require.True(t, res.ShouldPersist())
	require.NoError(t, ed.Flush(ctx))

	data, err := store.Load(ctx, persistence.DefaultKey)
	require.NoError(t, err)
	saved, err := persistence.Decode(data)
	require.NoError(t, err)
	require.Len(t, saved.Nodes, 1)
	assert.Equal(t, domain.Point{X: 200, Y: 100}, saved.Nodes[0].Position)
}

func TestEditor_RejectedEdgeBecomesNotice(t *testing.T) {
	ed, _ := newEditor(t)
	welcome, _ := ed.CreateNode(domain.KindWelcome, domain.Point{}, domain.Payload{})
	handoff, _ := ed.CreateNode(domain.KindHandoff, domain.Point{X: 300}, domain.Payload{})

	_, err := ed.CreateEdge(handoff.ID, domain.PortIn, welcome.ID, domain.PortOut)
	assert.ErrorIs(t, err, domain.ErrPortDirection)

	notices := ed.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, domain.NoticeValidationRejection, notices[0].Kind)
	assert.Empty(t, ed.Flow().Edges)
}

func TestEditor_HandoffInheritsDepartment(t *testing.T) {
	ed, _ := newEditor(t)
	dept := catalog.DefaultDepartments[0]

	h, err := ed.CreateNode(domain.KindHandoff, domain.Point{}, domain.Payload{Title: "Route"})
	require.NoError(t, err)
	assert.Empty(t, h.Payload.Agents)

	h, err = ed.UpdatePayload(h.ID, domain.Payload{Title: "Route", Department: dept.ID})
	require.NoError(t, err)
	assert.Equal(t, dept.AgentIDs, h.Payload.Agents)
	assert.Equal(t, dept.Color, h.Payload.Color)

	// Explicit agents win.
	h, err = ed.UpdatePayload(h.ID, domain.Payload{Department: catalog.DefaultDepartments[1].ID, Agents: []string{"solo"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, h.Payload.Agents)

	_, err = ed.UpdatePayload("missing", domain.Payload{})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestEditor_HandoffSwitchesDepartment(t *testing.T) {
	ed, _ := newEditor(t)
	from, to := catalog.DefaultDepartments[0], catalog.DefaultDepartments[1]

	h, err := ed.CreateNode(domain.KindHandoff, domain.Point{}, domain.Payload{Department: from.ID})
	require.NoError(t, err)

	// The edit form resubmits the whole payload, previous agents included.
	next := h.Payload.Clone()
	next.Department = to.ID
	h, err = ed.UpdatePayload(h.ID, next)
	require.NoError(t, err)
	assert.Equal(t, to.AgentIDs, h.Payload.Agents)
	assert.Equal(t, to.Color, h.Payload.Color)
}

func TestEditor_CreateNodeNormalizesKind(t *testing.T) {
	ed, _ := newEditor(t)
	dept := catalog.DefaultDepartments[0]

	h, err := ed.CreateNode(domain.Kind("Handoff"), domain.Point{}, domain.Payload{Department: dept.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.KindHandoff, h.Kind)
	assert.Equal(t, dept.AgentIDs, h.Payload.Agents)
}

func TestEditor_DeleteNodeCascades(t *testing.T) {
	ed, _ := newEditor(t)
	a, _ := ed.CreateNode(domain.KindIntent, domain.Point{}, domain.Payload{Intents: []string{"x"}})
	b, _ := ed.CreateNode(domain.KindMessage, domain.Point{X: 300}, domain.Payload{})
	_, err := ed.CreateEdge(a.ID, domain.PortOut, b.ID, domain.PortIn)
	require.NoError(t, err)

	assert.True(t, ed.DeleteNode(b.ID))
	assert.False(t, ed.DeleteNode(b.ID))
	assert.Empty(t, ed.Flow().Edges)
	assert.Empty(t, ed.Scene().Edges)
}

func TestEditor_NoticeHistoryIsBounded(t *testing.T) {
	ed, _ := newEditor(t)
	n, _ := ed.CreateNode(domain.KindMessage, domain.Point{}, domain.Payload{})
	for i := 0; i < flowbuilder.NoticeHistory+10; i++ {
		_, _ = ed.CreateEdge(n.ID, domain.PortOut, n.ID, domain.PortIn)
	}
	assert.Len(t, ed.Notices(), flowbuilder.NoticeHistory)
}

func TestEditor_SinksReceiveSavedFlow(t *testing.T) {
	var mu sync.Mutex
	var got []int
	sink := ports.FlowSinkFunc(func(ctx context.Context, flow domain.Flow) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, len(flow.Nodes))
		return nil
	})
	failing := ports.FlowSinkFunc(func(ctx context.Context, flow domain.Flow) error {
		return fmt.Errorf("runtime offline")
	})

	ed, _ := newEditor(t, flowbuilder.WithSink(sink), flowbuilder.WithSink(failing))
	_, _ = ed.CreateNode(domain.KindMessage, domain.Point{}, domain.Payload{})
	require.NoError(t, ed.Save(context.Background()))

	mu.Lock()
	assert.Equal(t, []int{1}, got)
	mu.Unlock()

	// The failing sink surfaces as a warning but the save itself succeeded.
	notices := ed.Notices()
	require.NotEmpty(t, notices)
	assert.Equal(t, domain.LevelWarning, notices[len(notices)-1].Level)
}

func TestEditor_SubscribeReceivesScenes(t *testing.T) {
	ed, _ := newEditor(t)
	var scenes []render.Scene
	cancel := ed.Subscribe(func(s render.Scene) { scenes = append(scenes, s) })

	_, _ = ed.CreateNode(domain.KindMessage, domain.Point{}, domain.Payload{})
	ed.Handle(interaction.Zoom{Delta: 0.5})
	require.Len(t, scenes, 2)
	assert.Len(t, scenes[0].Nodes, 1)
	assert.InDelta(t, 1.5, scenes[1].Transform.Zoom, 1e-9)

	cancel()
	_, _ = ed.CreateNode(domain.KindMessage, domain.Point{}, domain.Payload{})
	assert.Len(t, scenes, 2)
}

func TestEditor_CheckSync(t *testing.T) {
	ed, _ := newEditor(t)
	a, _ := ed.CreateNode(domain.KindMessage, domain.Point{}, domain.Payload{})
	b, _ := ed.CreateNode(domain.KindMessage, domain.Point{X: 300}, domain.Payload{})

	assert.True(t, ed.CheckSync())

	ed.ReportView([]string{b.ID, a.ID})
	assert.True(t, ed.CheckSync(), "order does not matter")

	ed.ReportView([]string{a.ID})
	assert.False(t, ed.CheckSync())
	notices := ed.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, domain.NoticeDesyncWarning, notices[0].Kind)

	assert.True(t, ed.CheckSync(), "recovered after re-render")
}

func TestEditor_RunChecksOnFocus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ed, store := newEditor(t)
	n, _ := ed.CreateNode(domain.KindMessage, domain.Point{}, domain.Payload{})

	redrawn := make(chan struct{}, 1)
	ed.Subscribe(func(render.Scene) {
		select {
		case redrawn <- struct{}{}:
		default:
		}
	})

	done := make(chan error, 1)
	go func() { done <- ed.Run(ctx) }()

	ed.ReportView([]string{n.ID, "ghost"})
	ed.FocusRegained()

	select {
	case <-redrawn:
	case <-time.After(2 * time.Second):
		t.Fatal("focus did not trigger a consistency check")
	}

	cancel()
	require.NoError(t, <-done)

	// Run flushes pending writes on exit.
	_, err := store.Load(context.Background(), persistence.DefaultKey)
	assert.NoError(t, err)
}

func TestEditor_ResetAndReplace(t *testing.T) {
	ed, _ := newEditor(t)
	flow := ed.Reset()
	assert.NotEmpty(t, flow.NodesOfKind(domain.KindWelcome))

	flow.Edges = append(flow.Edges, domain.Edge{ID: "dangling", From: "nope", FromPort: domain.PortOut, To: "nope2", ToPort: domain.PortIn})
	problems := ed.Replace(flow)
	assert.Len(t, problems, 1)
	for _, e := range ed.Flow().Edges {
		assert.NotEqual(t, "dangling", e.ID)
	}
}

func TestRunner(t *testing.T) {
	ed, _ := newEditor(t)
	ed.Load(context.Background())

	var out bytes.Buffer
	r := flowbuilder.NewRunner()
	r.Input = strings.NewReader("I have a question about my invoice\n\n/sv\nhello\nquit\nnever read\n")
	r.Output = &out
	r.Headless = true

	require.NoError(t, r.Run(context.Background(), ed))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Contains(t, out.String(), "Hej!")
	assert.Contains(t, out.String(), "billing")
	assert.Equal(t, "Bye!", lines[len(lines)-1])
	assert.NotContains(t, out.String(), "never read")
}

func TestRunner_RequiresIO(t *testing.T) {
	ed, _ := newEditor(t)
	assert.Error(t, flowbuilder.NewRunner().Run(context.Background(), ed))
}
