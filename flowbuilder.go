package flowbuilder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/flowbuilder/internal/logging"
	"github.com/aretw0/flowbuilder/pkg/adapters/memory"
	"github.com/aretw0/flowbuilder/pkg/canvas"
	"github.com/aretw0/flowbuilder/pkg/catalog"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/graph"
	"github.com/aretw0/flowbuilder/pkg/interaction"
	"github.com/aretw0/flowbuilder/pkg/observability"
	"github.com/aretw0/flowbuilder/pkg/persistence"
	"github.com/aretw0/flowbuilder/pkg/ports"
	"github.com/aretw0/flowbuilder/pkg/render"
	"github.com/aretw0/flowbuilder/pkg/simulator"
	"github.com/aretw0/flowbuilder/pkg/viewport"
)

const (
	// DefaultSyncInterval is the period of the background view consistency check.
	DefaultSyncInterval = 30 * time.Second
	// NoticeHistory is the number of notices kept for late subscribers.
	NoticeHistory = 50
)

// Catalog supplies departments and assistants.
type Catalog interface {
	ports.DepartmentCatalog
	ports.AssistantCatalog
}

// Editor is the high-level entry point of the flow builder.
// It owns one flow and serializes every operation on it: the graph, the canvas
// state and the last rendered scene only change while holding the editor lock.
type Editor struct {
	store        ports.KVStore
	catalog      Catalog
	sinks        []ports.FlowSink
	notifiers    []ports.Notifier
	logger       *slog.Logger
	metrics      *observability.Metrics
	bridgeOpts   []persistence.Option
	modelOpts    []graph.Option
	simOpts      []simulator.Option
	syncInterval time.Duration

	mu          sync.Mutex
	model       *graph.Model
	canvas      *canvas.Store
	controller  *interaction.Controller
	renderer    *render.Renderer
	bridge      *persistence.Bridge
	sim         *simulator.Simulator
	departments []domain.Department
	scene       render.Scene
	reported    []string // Node ids the client reports as displayed

	noticeMu sync.Mutex
	notices  []domain.Notice

	subMu  sync.Mutex
	subs   map[int]func(render.Scene)
	nextID int

	focus chan struct{}
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithStore sets the key-value store holding the flow snapshot (default: in-memory).
func WithStore(s ports.KVStore) Option {
	return func(e *Editor) {
		e.store = s
	}
}

// WithCatalog sets the department and assistant source (default: built-in catalog).
func WithCatalog(c Catalog) Option {
	return func(e *Editor) {
		e.catalog = c
	}
}

// WithSink adds a consumer of saved snapshots (the chatbot runtime, a websocket hub...).
func WithSink(s ports.FlowSink) Option {
	return func(e *Editor) {
		e.sinks = append(e.sinks, s)
	}
}

// WithNotifier adds a receiver of user-facing notices.
func WithNotifier(n ports.Notifier) Option {
	return func(e *Editor) {
		e.notifiers = append(e.notifiers, n)
	}
}

// WithLogger sets a custom structured logger for the editor and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithMetrics enables prometheus metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Editor) {
		e.metrics = m
	}
}

// WithKey sets the storage slot of the flow.
func WithKey(key string) Option {
	return func(e *Editor) {
		e.bridgeOpts = append(e.bridgeOpts, persistence.WithKey(key))
	}
}

// WithDebounce sets the quiet period before a save.
func WithDebounce(d time.Duration) Option {
	return func(e *Editor) {
		e.bridgeOpts = append(e.bridgeOpts, persistence.WithDebounce(d))
	}
}

// WithTypingDelay sets the simulated typing delay.
func WithTypingDelay(d time.Duration) Option {
	return func(e *Editor) {
		e.simOpts = append(e.simOpts, simulator.WithTypingDelay(d))
	}
}

// WithIDGenerator overrides node and edge id allocation.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(e *Editor) {
		e.modelOpts = append(e.modelOpts, graph.WithIDGenerator(fn))
	}
}

// WithSyncInterval sets the period of the consistency check run by Run.
func WithSyncInterval(d time.Duration) Option {
	return func(e *Editor) {
		e.syncInterval = d
	}
}

// New initializes an editor holding an empty flow. Call Load to restore the saved one.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{
		syncInterval: DefaultSyncInterval,
		subs:         make(map[int]func(render.Scene)),
		focus:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.catalog == nil {
		e.catalog = catalog.Default()
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.syncInterval <= 0 {
		return nil, fmt.Errorf("sync interval must be positive")
	}

	departments, err := e.catalog.Departments(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}
	e.departments = departments

	e.model = graph.New(e.modelOpts...)
	e.canvas = canvas.NewStore()
	e.controller = interaction.New(e.model, e.canvas, interaction.WithLogger(e.logger))
	e.renderer = render.New(render.WithLogger(e.logger))
	e.sim = simulator.New(append([]simulator.Option{
		simulator.WithLogger(e.logger),
		simulator.WithMetrics(e.metrics),
	}, e.simOpts...)...)

	bridgeOpts := []persistence.Option{
		persistence.WithLogger(e.logger),
		persistence.WithMetrics(e.metrics),
		persistence.WithNotifier(ports.NotifierFunc(e.notify)),
	}
	if len(e.sinks) > 0 {
		bridgeOpts = append(bridgeOpts, persistence.WithSink(ports.FlowSinkFunc(e.forward)))
	}
	e.bridge = persistence.New(e.store, append(bridgeOpts, e.bridgeOpts...)...)

	e.scene = e.renderer.Render(e.model.Snapshot(), e.canvas.State())
	return e, nil
}

// forward fans a saved snapshot out to every sink.
func (e *Editor) forward(ctx context.Context, flow domain.Flow) error {
	var errs []error
	for _, s := range e.sinks {
		if err := s.UpdateFlow(ctx, flow); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load restores the saved flow, or the default flow when nothing usable was saved.
func (e *Editor) Load(ctx context.Context) persistence.Source {
	flow, src := e.bridge.Load(ctx, e.departments)

	e.mu.Lock()
	e.model.Replace(flow)
	e.canvas.Dispatch(canvas.End{})
	scene := e.commitLocked(false)
	e.mu.Unlock()

	e.logger.Info("flow loaded", "source", src, "nodes", len(flow.Nodes), "edges", len(flow.Edges))
	e.publish(scene)
	return src
}

// Reset replaces the flow with the default flow and schedules a save.
func (e *Editor) Reset() domain.Flow {
	flow := graph.DefaultFlow(e.departments, time.Now())
	e.Replace(flow)
	return e.Flow()
}

// Replace swaps the whole flow (import). Invalid edges are dropped and returned.
func (e *Editor) Replace(flow domain.Flow) []error {
	e.mu.Lock()
	problems := e.model.Replace(flow)
	e.canvas.Dispatch(canvas.End{})
	e.canvas.Dispatch(canvas.Select{})
	scene := e.commitLocked(true)
	e.mu.Unlock()

	if len(problems) > 0 {
		e.notify(domain.NewNotice(domain.NoticeValidationRejection, domain.LevelWarning,
			fmt.Sprintf("%d invalid element(s) were dropped from the imported flow.", len(problems))))
	}
	e.publish(scene)
	return problems
}

// CreateNode adds a node. Handoff nodes inherit agents and color from their department.
func (e *Editor) CreateNode(kind domain.Kind, position domain.Point, payload domain.Payload) (domain.Node, error) {
	kind, err := domain.ParseKind(string(kind))
	if err != nil {
		return domain.Node{}, err
	}
	var node domain.Node
	err = e.mutate(func() error {
		var err error
		node, err = e.model.CreateNode(kind, position, e.inherit(kind, domain.Payload{}, payload))
		return err
	})
	return node, err
}

// DeleteNode removes a node and its edges. It reports whether a node was removed.
func (e *Editor) DeleteNode(id string) bool {
	var removed bool
	_ = e.mutate(func() error {
		if removed = e.model.DeleteNode(id); !removed {
			return errUnchanged
		}
		if e.canvas.State().Selected == id {
			e.canvas.Dispatch(canvas.Select{})
		}
		return nil
	})
	return removed
}

// DuplicateNode copies a node with a fresh id and no edges.
func (e *Editor) DuplicateNode(id string) (domain.Node, error) {
	var node domain.Node
	err := e.mutate(func() error {
		var err error
		node, err = e.model.DuplicateNode(id)
		return err
	})
	return node, err
}

// CreateEdge connects an output port to an input port.
// A refused connection also emits a validation_rejection notice.
func (e *Editor) CreateEdge(fromID, fromPort, toID, toPort string) (domain.Edge, error) {
	var edge domain.Edge
	err := e.mutate(func() error {
		var err error
		edge, err = e.model.CreateEdge(fromID, fromPort, toID, toPort)
		return err
	})
	if err != nil && domain.IsValidationRejection(err) {
		e.metrics.EdgeRejected()
		e.notify(interaction.RejectionNotice(err))
	}
	return edge, err
}

// DeleteEdge removes an edge. It reports whether an edge was removed.
func (e *Editor) DeleteEdge(id string) bool {
	var removed bool
	_ = e.mutate(func() error {
		if removed = e.model.DeleteEdge(id); !removed {
			return errUnchanged
		}
		return nil
	})
	return removed
}

// MoveNode sets a node position and schedules a save.
func (e *Editor) MoveNode(id string, position domain.Point) error {
	return e.mutate(func() error {
		return e.model.MoveNode(id, position)
	})
}

// UpdatePayload commits the edit form of a node.
// When a Handoff changes department without naming agents, the department's agents and color are inherited.
func (e *Editor) UpdatePayload(id string, payload domain.Payload) (domain.Node, error) {
	var node domain.Node
	err := e.mutate(func() error {
		current, ok := e.model.Node(id)
		if !ok {
			return fmt.Errorf("update %q: %w", id, domain.ErrNodeNotFound)
		}
		var err error
		node, err = e.model.UpdatePayload(id, e.inherit(current.Kind, current.Payload, payload))
		return err
	})
	return node, err
}

func (e *Editor) inherit(kind domain.Kind, prev, next domain.Payload) domain.Payload {
	if kind != domain.KindHandoff || next.Department == "" || next.Department == prev.Department {
		return next
	}
	for _, d := range e.departments {
		if d.ID != next.Department {
			continue
		}
		// Values carried over from the previous department are replaced.
		if len(next.Agents) == 0 || slices.Equal(next.Agents, prev.Agents) {
			next.Agents = append([]string(nil), d.AgentIDs...)
		}
		if next.Color == "" || next.Color == prev.Color {
			next.Color = d.Color
		}
	}
	return next
}

// errUnchanged marks a no-op mutation: nothing is saved.
var errUnchanged = errors.New("unchanged")

// mutate runs fn under the lock, schedules a save on success and publishes the new scene.
func (e *Editor) mutate(fn func() error) error {
	e.mu.Lock()
	err := fn()
	scene := e.commitLocked(err == nil)
	e.mu.Unlock()

	if err == nil {
		e.publish(scene)
	}
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

// commitLocked re-renders and optionally schedules a save. Caller holds e.mu.
func (e *Editor) commitLocked(persist bool) render.Scene {
	flow := e.model.Snapshot()
	if persist {
		e.bridge.Schedule(flow)
	}
	e.metrics.GraphSize(len(flow.Nodes), len(flow.Edges))
	e.scene = e.renderer.Render(flow, e.canvas.State())
	e.reported = nil
	return e.scene
}

// Handle routes one pointer or keyboard command through the interaction state machine.
func (e *Editor) Handle(cmd interaction.Command) interaction.Result {
	e.mu.Lock()
	res := e.controller.Handle(cmd)
	scene := e.commitLocked(res.ShouldPersist())
	e.mu.Unlock()

	for _, n := range res.Notices {
		if n.Kind == domain.NoticeValidationRejection {
			e.metrics.EdgeRejected()
		}
		e.notify(n)
	}
	e.publish(scene)
	return res
}

// Scene returns the last rendered scene.
func (e *Editor) Scene() render.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene
}

// Flow returns a snapshot of the flow.
func (e *Editor) Flow() domain.Flow {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Snapshot()
}

// Node returns a copy of one node.
func (e *Editor) Node(id string) (domain.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Node(id)
}

// Canvas returns a copy of the canvas state.
func (e *Editor) Canvas() canvas.State {
	return e.canvas.State()
}

// SetViewport replaces the viewport (zoom is clamped).
func (e *Editor) SetViewport(v viewport.Viewport) {
	e.mu.Lock()
	v.Zoom = viewport.Clamp(v.Zoom)
	e.canvas.Dispatch(canvas.SetViewport{Viewport: v})
	scene := e.commitLocked(false)
	e.mu.Unlock()
	e.publish(scene)
}

// Departments returns the department catalog loaded at startup.
func (e *Editor) Departments() []domain.Department {
	out := make([]domain.Department, len(e.departments))
	copy(out, e.departments)
	return out
}

// Assistants returns the assistants selectable by Message nodes.
func (e *Editor) Assistants(ctx context.Context) ([]domain.Assistant, error) {
	return e.catalog.Assistants(ctx)
}

// Greeting returns the simulator's opening line for the current flow.
func (e *Editor) Greeting() string {
	return e.sim.Greeting(e.Flow())
}

// SetLanguage sets the preferred reply language. Messages detected as Swedish are always answered in Swedish.
func (e *Editor) SetLanguage(l simulator.Language) {
	e.sim.SetLanguage(l)
}

// Simulate answers one visitor message after the typing delay.
// The editor lock is not held while typing.
func (e *Editor) Simulate(ctx context.Context, msg string) (simulator.Reply, error) {
	return e.sim.Reply(ctx, msg)
}

// Save writes the current flow immediately.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	flow := e.model.Snapshot()
	e.mu.Unlock()
	return e.bridge.Save(ctx, flow)
}

// Flush writes the pending debounced save, if any.
func (e *Editor) Flush(ctx context.Context) error {
	return e.bridge.Flush(ctx)
}

// Close flushes pending writes and stops scheduling saves.
func (e *Editor) Close(ctx context.Context) error {
	return e.bridge.Close(ctx)
}

// Key returns the storage slot of the flow.
func (e *Editor) Key() string {
	return e.bridge.Key()
}

// Notices returns the most recent notices, oldest first.
func (e *Editor) Notices() []domain.Notice {
	e.noticeMu.Lock()
	defer e.noticeMu.Unlock()
	return append([]domain.Notice(nil), e.notices...)
}

func (e *Editor) notify(n domain.Notice) {
	e.noticeMu.Lock()
	e.notices = append(e.notices, n)
	if len(e.notices) > NoticeHistory {
		e.notices = e.notices[len(e.notices)-NoticeHistory:]
	}
	e.noticeMu.Unlock()

	e.metrics.Notice(string(n.Kind))
	e.logger.Debug("notice", "kind", n.Kind, "level", n.Level, "message", n.Message)
	for _, nt := range e.notifiers {
		nt.Notify(n)
	}
}

// Subscribe registers fn to receive every re-rendered scene (redraw trigger).
// It returns a function that cancels the subscription.
func (e *Editor) Subscribe(fn func(render.Scene)) func() {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	return func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Editor) publish(scene render.Scene) {
	e.subMu.Lock()
	fns := make([]func(render.Scene), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(scene)
	}
}
