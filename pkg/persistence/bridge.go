// Package persistence saves the flow to a key-value slot and forwards it to the
// chatbot runtime.
//
// Writes are debounced: rapid mutations collapse into one write after a quiet
// period. A write failure becomes a notice and never rolls back the in-memory
// graph; the next successful write catches up.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/flowbuilder/internal/logging"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/graph"
	"github.com/aretw0/flowbuilder/pkg/observability"
	"github.com/aretw0/flowbuilder/pkg/ports"
)

const (
	// DefaultKey is the storage slot of the flow.
	DefaultKey = "chatbot-flow"
	// DefaultDebounce is the quiet period before a scheduled write.
	DefaultDebounce = 500 * time.Millisecond
	// DefaultWriteTimeout bounds one debounced write.
	DefaultWriteTimeout = 10 * time.Second
)

// Source tells where a loaded flow came from.
type Source string

const (
	SourceSaved   Source = "saved"
	SourceDefault Source = "default"
)

// Bridge connects the graph to durable storage and to the flow sink.
type Bridge struct {
	store    ports.KVStore
	key      string
	sink     ports.FlowSink
	notifier ports.Notifier
	debounce time.Duration
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu      sync.Mutex
	pending *domain.Flow
	timer   *time.Timer
	closed  bool

	saveMu sync.Mutex // Serializes writes
}

// Option configures the Bridge.
type Option func(*Bridge)

// WithKey sets the storage slot.
func WithKey(key string) Option {
	return func(b *Bridge) {
		b.key = key
	}
}

// WithSink sets the consumer notified after every successful save.
func WithSink(sink ports.FlowSink) Option {
	return func(b *Bridge) {
		b.sink = sink
	}
}

// WithNotifier sets where failure notices go.
func WithNotifier(n ports.Notifier) Option {
	return func(b *Bridge) {
		b.notifier = n
	}
}

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(b *Bridge) {
		b.debounce = d
	}
}

// WithWriteTimeout bounds each debounced write.
func WithWriteTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		b.timeout = d
	}
}

// WithClock overrides the time source used for metadata stamps.
func WithClock(now func() time.Time) Option {
	return func(b *Bridge) {
		b.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithMetrics enables save metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// New creates a bridge over a store.
func New(store ports.KVStore, opts ...Option) *Bridge {
	b := &Bridge{
		store:    store,
		key:      DefaultKey,
		debounce: DefaultDebounce,
		timeout:  DefaultWriteTimeout,
		now:      time.Now,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Key returns the storage slot.
func (b *Bridge) Key() string {
	return b.key
}

// Schedule queues a debounced write of flow. A new call replaces the pending
// snapshot and restarts the quiet period.
func (b *Bridge) Schedule(flow domain.Flow) {
	snapshot := flow.Clone()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.pending = &snapshot
	if b.timer == nil {
		b.timer = time.AfterFunc(b.debounce, b.fire)
		return
	}
	b.timer.Reset(b.debounce)
}

// Pending reports whether a write is scheduled.
func (b *Bridge) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending != nil
}

func (b *Bridge) fire() {
	flow, ok := b.takePending()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	_ = b.Save(ctx, flow)
}

func (b *Bridge) takePending() (domain.Flow, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return domain.Flow{}, false
	}
	flow := *b.pending
	b.pending = nil
	return flow, true
}

// Flush writes the pending snapshot now, if any.
func (b *Bridge) Flush(ctx context.Context) error {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()

	flow, ok := b.takePending()
	if !ok {
		return nil
	}
	return b.Save(ctx, flow)
}

// Close flushes the pending snapshot and stops scheduling.
func (b *Bridge) Close(ctx context.Context) error {
	err := b.Flush(ctx)
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return err
}

// Save writes flow immediately and forwards it to the sink.
// Failures are reported to the notifier and returned.
func (b *Bridge) Save(ctx context.Context, flow domain.Flow) error {
	b.saveMu.Lock()
	defer b.saveMu.Unlock()

	// 1. Stamp and encode
	flow.Metadata.Version = domain.SchemaVersion
	flow.Metadata.UpdatedAt = b.now().UTC()
	if flow.Metadata.CreatedAt.IsZero() {
		flow.Metadata.CreatedAt = flow.Metadata.UpdatedAt
	}
	data, err := json.Marshal(flow)
	if err != nil {
		return b.fail(fmt.Errorf("encode flow: %w", err))
	}

	// 2. Write
	start := time.Now()
	err = b.store.Save(ctx, b.key, data)
	b.metrics.ObserveSave(time.Since(start), err)
	if err != nil {
		return b.fail(fmt.Errorf("save flow: %w", err))
	}
	b.logger.Debug("flow saved", "key", b.key, "nodes", len(flow.Nodes), "edges", len(flow.Edges), "bytes", len(data))

	// 3. Forward to the chatbot runtime
	if b.sink != nil {
		if err := b.sink.UpdateFlow(ctx, flow); err != nil {
			b.logger.Warn("flow sink rejected update", "err", err)
			b.notify(domain.NewNotice(domain.NoticePersistenceFailure, domain.LevelWarning,
				"Flow saved, but the chatbot could not be updated. It will pick up the next save."))
		}
	}
	return nil
}

func (b *Bridge) fail(err error) error {
	b.logger.Error("persistence failure", "key", b.key, "err", err)
	msg := "Could not save the flow. Your changes are kept and will be retried on the next edit."
	if errors.Is(err, domain.ErrQuotaExceeded) {
		msg = "Could not save the flow: storage is full."
	}
	b.notify(domain.NewNotice(domain.NoticePersistenceFailure, domain.LevelError, msg))
	return err
}

func (b *Bridge) notify(n domain.Notice) {
	if b.notifier != nil {
		b.notifier.Notify(n)
	}
}

// Load reads the saved flow. A missing slot yields the default flow built from
// departments; a failed read or corrupt data does too, plus a load_corruption notice.
// Dangling edges in a saved flow are dropped with a warning notice.
func (b *Bridge) Load(ctx context.Context, departments []domain.Department) (domain.Flow, Source) {
	fallback := func() (domain.Flow, Source) {
		return graph.DefaultFlow(departments, b.now()), SourceDefault
	}

	data, err := b.store.Load(ctx, b.key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		b.logger.Info("no saved flow, using default", "key", b.key)
		return fallback()
	}
	if err != nil {
		b.logger.Error("failed to read saved flow", "key", b.key, "err", err)
		b.notify(domain.NewNotice(domain.NoticeLoadCorruption, domain.LevelError,
			"Could not read the saved flow. The default flow was loaded."))
		return fallback()
	}

	flow, err := Decode(data)
	if err != nil {
		b.logger.Error("saved flow is corrupt", "key", b.key, "err", err)
		b.notify(domain.NewNotice(domain.NoticeLoadCorruption, domain.LevelError,
			"The saved flow is corrupt. The default flow was loaded."))
		return fallback()
	}

	repaired, problems := graph.Repair(flow)
	if len(problems) > 0 {
		b.logger.Warn("repaired saved flow", "problems", len(problems), "err", errors.Join(problems...))
		b.notify(domain.NewNotice(domain.NoticeLoadCorruption, domain.LevelWarning,
			fmt.Sprintf("The saved flow had %d invalid element(s); they were removed.", len(problems))))
	}
	return repaired, SourceSaved
}

// Decode parses a stored snapshot.
func Decode(data []byte) (domain.Flow, error) {
	var flow domain.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return domain.Flow{}, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}
	if flow.Nodes == nil {
		flow.Nodes = []domain.Node{}
	}
	if flow.Edges == nil {
		flow.Edges = []domain.Edge{}
	}
	return flow, nil
}
