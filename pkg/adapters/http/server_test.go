package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/flowbuilder"
	"github.com/aretw0/flowbuilder/pkg/adapters/memory"
	"github.com/aretw0/flowbuilder/pkg/catalog"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/simulator"
	"github.com/aretw0/flowbuilder/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEditor(t *testing.T) *flowbuilder.Editor {
	t.Helper()
	ed, err := flowbuilder.New(
		flowbuilder.WithStore(memory.NewStore()),
		flowbuilder.WithDebounce(time.Hour),
		flowbuilder.WithTypingDelay(0),
	)
	require.NoError(t, err)
	return ed
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestLoadSpec(t *testing.T) {
	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", doc.Info.Version)
}

func TestRoutesAreDocumented(t *testing.T) {
	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)

	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	h := NewHandler(newTestEditor(t), WithMetricsHandler(noop), WithWebsocket(noop), WithStorage(storage.New()))
	routes, ok := h.(chi.Routes)
	require.True(t, ok)

	count := 0
	err = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		count++
		item := doc.Paths.Value(route)
		if assert.NotNil(t, item, "route %s is not documented", route) {
			assert.NotNil(t, item.GetOperation(method), "%s %s is not documented", method, route)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Greater(t, count, 20)
}

func TestHealthAndInfo(t *testing.T) {
	h := NewHandler(newTestEditor(t))

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[map[string]string](t, w)
	assert.Equal(t, strings.TrimSpace(flowbuilder.Version), info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])
}

func TestNodeLifecycle(t *testing.T) {
	ed := newTestEditor(t)
	h := NewHandler(ed)

	// 1. Create
	w := do(t, h, http.MethodPost, "/nodes", map[string]any{
		"kind":     "handoff",
		"position": map[string]float64{"x": 10, "y": 20},
		"payload":  map[string]any{"title": "Route"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	node := decode[domain.Node](t, w)
	assert.Equal(t, domain.KindHandoff, node.Kind)

	// 2. Patch merges into the payload and inherits the department
	dept := catalog.DefaultDepartments[0]
	w = do(t, h, http.MethodPatch, "/nodes/"+node.ID, map[string]any{"department": dept.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	node = decode[domain.Node](t, w)
	assert.Equal(t, "Route", node.Payload.Title)
	assert.Equal(t, dept.AgentIDs, node.Payload.Agents)

	// 3. Move
	w = do(t, h, http.MethodPut, "/nodes/"+node.ID+"/position", map[string]float64{"x": 300, "y": 40})
	require.Equal(t, http.StatusOK, w.Code)
	got, _ := ed.Node(node.ID)
	assert.Equal(t, domain.Point{X: 300, Y: 40}, got.Position)

	// 4. Duplicate
	w = do(t, h, http.MethodPost, "/nodes/"+node.ID+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	dup := decode[domain.Node](t, w)
	assert.Equal(t, "Route (Copy)", dup.Payload.Title)

	// 5. Delete
	w = do(t, h, http.MethodDelete, "/nodes/"+node.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, http.MethodDelete, "/nodes/"+node.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, http.MethodGet, "/nodes/"+node.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateNode_InvalidKind(t *testing.T) {
	h := NewHandler(newTestEditor(t))
	w := do(t, h, http.MethodPost, "/nodes", map[string]any{"kind": "teleport"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "invalid node kind")
}

func TestPatchNode_UnknownField(t *testing.T) {
	ed := newTestEditor(t)
	h := NewHandler(ed)
	n, err := ed.CreateNode(domain.KindMessage, domain.Point{}, domain.Payload{Title: "Hi"})
	require.NoError(t, err)

	w := do(t, h, http.MethodPatch, "/nodes/"+n.ID, map[string]any{"colour": "red"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPatch, "/nodes/"+n.ID, map[string]any{
		"mode":     "manual",
		"messages": map[string]any{"english": "Hello"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[domain.Node](t, w)
	assert.Equal(t, domain.MessageModeManual, got.Payload.Mode)
	assert.Equal(t, "Hello", got.Payload.Messages.English)
	assert.Equal(t, "Hi", got.Payload.Title)
}

func TestPatchNode_ReplacesLists(t *testing.T) {
	ed := newTestEditor(t)
	h := NewHandler(ed)
	intent, err := ed.CreateNode(domain.KindIntent, domain.Point{}, domain.Payload{Intents: []string{"menu", "billing", "sales"}})
	require.NoError(t, err)
	handoff, err := ed.CreateNode(domain.KindHandoff, domain.Point{X: 300}, domain.Payload{Agents: []string{"agent-anna", "agent-erik"}})
	require.NoError(t, err)

	// A shorter list replaces the whole set
	w := do(t, h, http.MethodPatch, "/nodes/"+intent.ID, map[string]any{"intents": []string{"delivery"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"delivery"}, decode[domain.Node](t, w).Payload.Intents)

	w = do(t, h, http.MethodPatch, "/nodes/"+intent.ID, map[string]any{"intents": []string{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode[domain.Node](t, w).Payload.Intents)

	w = do(t, h, http.MethodPatch, "/nodes/"+handoff.ID, map[string]any{"agents": []string{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode[domain.Node](t, w).Payload.Agents)

	got, _ := ed.Node(intent.ID)
	assert.Empty(t, got.Payload.Intents)
}

func TestPatchNode_SwitchesDepartment(t *testing.T) {
	ed := newTestEditor(t)
	h := NewHandler(ed)
	from, to := catalog.DefaultDepartments[0], catalog.DefaultDepartments[1]

	n, err := ed.CreateNode(domain.KindHandoff, domain.Point{}, domain.Payload{Title: "Route", Department: from.ID})
	require.NoError(t, err)
	require.Equal(t, from.AgentIDs, n.Payload.Agents)
	require.Equal(t, from.Color, n.Payload.Color)

	// Same department: nothing is reset
	w := do(t, h, http.MethodPatch, "/nodes/"+n.ID, map[string]any{"department": from.ID, "title": "Route 1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[domain.Node](t, w)
	assert.Equal(t, from.AgentIDs, got.Payload.Agents)
	assert.Equal(t, from.Color, got.Payload.Color)

	// New department: its agents and color replace the previous team's
	w = do(t, h, http.MethodPatch, "/nodes/"+n.ID, map[string]any{"department": to.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = decode[domain.Node](t, w)
	assert.Equal(t, to.ID, got.Payload.Department)
	assert.Equal(t, to.AgentIDs, got.Payload.Agents)
	assert.Equal(t, to.Color, got.Payload.Color)
	assert.Equal(t, "Route 1", got.Payload.Title)

	// Explicit agents and color in the same patch win
	w = do(t, h, http.MethodPatch, "/nodes/"+n.ID, map[string]any{
		"department": from.ID,
		"agents":     []string{"solo"},
		"color":      "#000000",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = decode[domain.Node](t, w)
	assert.Equal(t, []string{"solo"}, got.Payload.Agents)
	assert.Equal(t, "#000000", got.Payload.Color)
}

func TestEdges(t *testing.T) {
	ed := newTestEditor(t)
	h := NewHandler(ed)
	welcome, _ := ed.CreateNode(domain.KindWelcome, domain.Point{}, domain.Payload{})
	msg, _ := ed.CreateNode(domain.KindMessage, domain.Point{X: 300}, domain.Payload{})

	// Wrong direction is a validation rejection
	w := do(t, h, http.MethodPost, "/edges", map[string]string{
		"from": msg.ID, "from_port": domain.PortIn, "to": welcome.ID, "to_port": domain.PortOut,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, ed.Notices(), 1)

	w = do(t, h, http.MethodPost, "/edges", map[string]string{
		"from": welcome.ID, "from_port": domain.PortOut, "to": "ghost", "to_port": domain.PortIn,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/edges", map[string]string{
		"from": welcome.ID, "from_port": domain.PortOut, "to": msg.ID, "to_port": domain.PortIn,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	edge := decode[domain.Edge](t, w)

	w = do(t, h, http.MethodDelete, "/edges/"+edge.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, http.MethodDelete, "/edges/"+edge.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlow_ETag(t *testing.T) {
	ed := newTestEditor(t)
	h := NewHandler(ed)
	ed.Reset()

	w := do(t, h, http.MethodGet, "/flow", nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	flow := decode[domain.Flow](t, w)

	w = do(t, h, http.MethodGet, "/flow", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	// Someone else edits the flow.
	_, err := ed.CreateNode(domain.KindMessage, domain.Point{}, domain.Payload{})
	require.NoError(t, err)

	w = do(t, h, http.MethodPut, "/flow", flow, "If-Match", etag)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPut, "/flow", flow)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, ed.Flow().Nodes, len(flow.Nodes))
	assert.NotEmpty(t, w.Header().Get("ETag"))
}

func TestFlow_SaveAndReset(t *testing.T) {
	ed := newTestEditor(t)
	h := NewHandler(ed)

	w := do(t, h, http.MethodPost, "/flow/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, ed.Flow().NodesOfKind(domain.KindWelcome))

	w = do(t, h, http.MethodPost, "/flow/save", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleCommand(t *testing.T) {
	ed := newTestEditor(t)
	h := NewHandler(ed)
	n, _ := ed.CreateNode(domain.KindMessage, domain.Point{}, domain.Payload{})

	w := do(t, h, http.MethodPost, "/commands", map[string]any{
		"type":   "pointer_down",
		"target": map[string]string{"type": "node_control", "node_id": n.ID, "control": "edit"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[map[string]any](t, w)
	assert.Equal(t, false, res["mutated"])
	effects, _ := res["effects"].([]any)
	require.Len(t, effects, 1)
	assert.Equal(t, "open_editor", effects[0].(map[string]any)["type"])

	w = do(t, h, http.MethodPost, "/commands", map[string]any{"type": "levitate"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestViewportAndScene(t *testing.T) {
	ed := newTestEditor(t)
	h := NewHandler(ed)
	_, _ = ed.CreateNode(domain.KindMessage, domain.Point{}, domain.Payload{Title: "Hours"})

	w := do(t, h, http.MethodPut, "/viewport", map[string]any{"zoom": 10})
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 2.0, ed.Canvas().Viewport.Zoom, 1e-9, "zoom is clamped")

	w = do(t, h, http.MethodGet, "/scene", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hours")

	w = do(t, h, http.MethodGet, "/scene.svg", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<svg")

	w = do(t, h, http.MethodGet, "/graph.mmd", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph LR"))
}

func TestSync(t *testing.T) {
	ed := newTestEditor(t)
	h := NewHandler(ed)
	n, _ := ed.CreateNode(domain.KindMessage, domain.Point{}, domain.Payload{})

	w := do(t, h, http.MethodPost, "/sync", map[string]any{"node_ids": []string{n.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[map[string]bool](t, w)["in_sync"])

	w = do(t, h, http.MethodPost, "/sync", map[string]any{"node_ids": []string{}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[map[string]bool](t, w)["in_sync"])

	w = do(t, h, http.MethodGet, "/notices", nil)
	notices := decode[[]domain.Notice](t, w)
	require.Len(t, notices, 1)
	assert.Equal(t, domain.NoticeDesyncWarning, notices[0].Kind)

	w = do(t, h, http.MethodPost, "/focus", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSimulate(t *testing.T) {
	ed := newTestEditor(t)
	h := NewHandler(ed)

	w := do(t, h, http.MethodPost, "/simulate", map[string]string{"message": "hej, jag har en fråga om min faktura"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reply := decode[map[string]string](t, w)
	assert.Equal(t, "sv", reply["language"])
	assert.NotEmpty(t, reply["text"])

	w = do(t, h, http.MethodPost, "/simulate", map[string]string{"message": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/simulate", map[string]string{"message": strings.Repeat("x", simulator.MaxInputSize+1)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/simulate/greeting", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[map[string]string](t, w)["text"])
}

func TestCatalog(t *testing.T) {
	h := NewHandler(newTestEditor(t))

	w := do(t, h, http.MethodGet, "/catalog/departments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Department](t, w), len(catalog.DefaultDepartments))

	w = do(t, h, http.MethodGet, "/catalog/assistants", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[[]domain.Assistant](t, w))
}

func TestAuth(t *testing.T) {
	secret := []byte("test-secret")
	h := NewHandler(newTestEditor(t), WithSecret(secret))
	body := map[string]any{"kind": "message"}

	// Reads stay open.
	w := do(t, h, http.MethodGet, "/flow", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/nodes", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodPost, "/nodes", body, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired, err := IssueToken(secret, "admin", -time.Minute)
	require.NoError(t, err)
	w = do(t, h, http.MethodPost, "/nodes", body, "Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), ErrTokenExpired.Error())

	token, err := IssueToken(secret, "admin", time.Hour)
	require.NoError(t, err)
	w = do(t, h, http.MethodPost, "/nodes", body, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, w.Code)

	other, _ := IssueToken([]byte("other"), "admin", time.Hour)
	_, err = ValidateToken(secret, other)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCORS(t *testing.T) {
	h := NewHandler(newTestEditor(t), WithAllowedOrigins([]string{"https://admin.example"}))

	w := do(t, h, http.MethodOptions, "/nodes", nil, "Origin", "https://admin.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://admin.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, h, http.MethodGet, "/health", nil, "Origin", "https://evil.example")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	ed := newTestEditor(t)
	streams := NewStreamManager(nil)
	srv := httptest.NewServer(NewHandler(ed, WithStreams(streams)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?watch=scene", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	require.Eventually(t, func() bool { return streams.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	// Notices are filtered out; the scene of the mutation is delivered.
	streams.Notify(domain.NewNotice(domain.NoticeValidationRejection, domain.LevelError, "nope"))
	_, err = ed.CreateNode(domain.KindMessage, domain.Point{}, domain.Payload{Title: "Pushed"})
	require.NoError(t, err)

	var events []string
	for lines.Scan() {
		line := lines.Text()
		if strings.HasPrefix(line, "event: ") {
			events = append(events, strings.TrimPrefix(line, "event: "))
		}
		if strings.HasPrefix(line, "data: ") && strings.Contains(line, "Pushed") {
			break
		}
	}
	assert.Equal(t, []string{EventScene}, events)
}

func TestStreamManager_DropsSlowClients(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe()
	defer cancel()

	for i := 0; i < 20; i++ {
		sm.Broadcast(EventFlow, i)
	}
	assert.Len(t, ch, cap(ch))

	require.NoError(t, sm.UpdateFlow(context.Background(), domain.Flow{}))
	cancel()
	assert.Equal(t, 0, sm.Subscribers())
}

func TestStreamManager_PublishesDiffs(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe(EventDiff)
	defer cancel()

	node := domain.Node{ID: "n1", Kind: domain.KindMessage}
	flow := domain.Flow{Nodes: []domain.Node{node}}
	require.NoError(t, sm.UpdateFlow(context.Background(), flow))
	first := <-ch
	assert.Contains(t, first.Data, `"upserted_nodes"`)

	// Unchanged snapshot: no diff
	require.NoError(t, sm.UpdateFlow(context.Background(), flow))
	assert.Empty(t, ch)

	require.NoError(t, sm.UpdateFlow(context.Background(), domain.Flow{}))
	removed := <-ch
	assert.Contains(t, removed.Data, `"removed_nodes":["n1"]`)
}

func TestHandler_Storage(t *testing.T) {
	primary := memory.NewStore()
	helper := storage.New(storage.WithPrimary(primary), storage.WithPrefix("admin:"))
	h := NewHandler(newTestEditor(t), WithStorage(helper))

	w := do(t, h, http.MethodGet, "/storage/prefs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPut, "/storage/prefs", map[string]any{"theme": "dark"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[struct {
		Success bool               `json:"success"`
		Result  storage.SaveResult `json:"result"`
	}](t, w)
	assert.True(t, res.Success)
	assert.Equal(t, storage.TierPrimary, res.Result.Tier)
	assert.True(t, res.Result.Verified)

	_, err := primary.Load(context.Background(), "admin:prefs")
	require.NoError(t, err)

	w = do(t, h, http.MethodGet, "/storage/prefs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(storage.TierPrimary), w.Header().Get("X-Storage-Tier"))
	assert.JSONEq(t, `{"theme":"dark"}`, w.Body.String())

	w = do(t, h, http.MethodDelete, "/storage/prefs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, http.MethodGet, "/storage/prefs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	do(t, h, http.MethodPut, "/storage/a", 1)
	do(t, h, http.MethodPut, "/storage/b", 2)
	w = do(t, h, http.MethodDelete, "/storage", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, http.MethodGet, "/storage/a", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_StorageNotMounted(t *testing.T) {
	h := NewHandler(newTestEditor(t))
	w := do(t, h, http.MethodGet, "/storage/prefs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
