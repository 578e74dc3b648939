// Package storage is a best-effort durability helper for the admin app.
//
// Save walks a fallback chain: primary store, then session store, then (on quota
// failures) the same stores with a size-reduced value, then process memory. A
// read-back check after each write is the only integrity check; a mismatch is
// reported, never retried.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/flowbuilder/internal/logging"
	"github.com/aretw0/flowbuilder/pkg/adapters/memory"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/observability"
	"github.com/aretw0/flowbuilder/pkg/ports"
	"lukechampine.com/blake3"
)

// Tier names the store that served a request.
type Tier string

const (
	TierPrimary Tier = "primary"
	TierSession Tier = "session"
	TierMemory  Tier = "memory"
)

// SaveOptions tune a single Save.
type SaveOptions struct {
	// NoReduce disables the size-reduction retry on quota failures.
	NoReduce bool
	// NoVerify skips the read-back check.
	NoVerify bool
}

// SaveResult reports how a Save was served.
type SaveResult struct {
	Tier     Tier `json:"tier"`
	Reduced  bool `json:"reduced"`
	Verified bool `json:"verified"`
	// Mismatch is set when the read-back differs from what was written.
	Mismatch bool `json:"mismatch"`
}

// LoadOptions tune a single Load.
type LoadOptions struct {
	// Default is decoded into the target when no tier holds the key.
	Default any
}

type tier struct {
	name  Tier
	store ports.KVStore
}

// Helper implements the fallback chain.
type Helper struct {
	tiers   []tier
	prefix  string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures the Helper.
type Option func(*Helper)

// WithPrimary sets the primary store.
func WithPrimary(s ports.KVStore) Option {
	return func(h *Helper) {
		h.tiers = append(h.tiers, tier{TierPrimary, s})
	}
}

// WithSession sets the session store.
func WithSession(s ports.KVStore) Option {
	return func(h *Helper) {
		h.tiers = append(h.tiers, tier{TierSession, s})
	}
}

// WithPrefix namespaces keys; Clear only removes keys under it.
func WithPrefix(prefix string) Option {
	return func(h *Helper) {
		h.prefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Helper) {
		h.logger = logger
	}
}

// WithMetrics enables tier metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Helper) {
		h.metrics = m
	}
}

// New creates a helper. Without any store option every call is served from memory.
func New(opts ...Option) *Helper {
	h := &Helper{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	// Primary before session regardless of option order.
	ordered := make([]tier, 0, len(h.tiers)+1)
	for _, want := range []Tier{TierPrimary, TierSession} {
		for _, t := range h.tiers {
			if t.name == want && t.store != nil {
				ordered = append(ordered, t)
			}
		}
	}
	h.tiers = append(ordered, tier{TierMemory, memory.NewStore()})
	return h
}

func (h *Helper) key(k string) string {
	return h.prefix + k
}

// Save encodes data as JSON and writes it through the fallback chain.
func (h *Helper) Save(ctx context.Context, key string, data any, opts SaveOptions) (SaveResult, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return SaveResult{}, fmt.Errorf("encode %q: %w", key, err)
	}
	durable := h.tiers[:len(h.tiers)-1]

	// 1. Durable tiers as-is
	quota := false
	for _, t := range durable {
		err := t.store.Save(ctx, h.key(key), raw)
		if err == nil {
			return h.saved(ctx, t, key, raw, false, opts), nil
		}
		quota = quota || errors.Is(err, domain.ErrQuotaExceeded)
		h.logger.Warn("storage tier failed", "tier", t.name, "key", key, "err", err)
	}

	// 2. Durable tiers with a reduced value
	reduced, didReduce := raw, false
	if quota && !opts.NoReduce {
		if small, ok := reduce(raw); ok {
			reduced, didReduce = small, true
			for _, t := range durable {
				err := t.store.Save(ctx, h.key(key), reduced)
				if err == nil {
					h.logger.Info("saved reduced value", "tier", t.name, "key", key, "from", len(raw), "to", len(reduced))
					return h.saved(ctx, t, key, reduced, true, opts), nil
				}
				h.logger.Warn("storage tier failed after reduction", "tier", t.name, "key", key, "err", err)
			}
		}
	}

	// 3. Memory
	mem := h.tiers[len(h.tiers)-1]
	if err := mem.store.Save(ctx, h.key(key), reduced); err != nil {
		return SaveResult{}, fmt.Errorf("save %q: %w", key, err)
	}
	return h.saved(ctx, mem, key, reduced, didReduce, opts), nil
}

func (h *Helper) saved(ctx context.Context, t tier, key string, written []byte, reduced bool, opts SaveOptions) SaveResult {
	h.metrics.StorageWrite(string(t.name))
	res := SaveResult{Tier: t.name, Reduced: reduced}
	if opts.NoVerify {
		return res
	}

	back, err := t.store.Load(ctx, h.key(key))
	if err == nil && blake3.Sum256(back) == blake3.Sum256(written) {
		res.Verified = true
		return res
	}
	res.Mismatch = true
	h.logger.Error("verify after write failed", "tier", t.name, "key", key, "err", err)
	return res
}

// LoadRaw returns the stored bytes from the first tier holding key.
func (h *Helper) LoadRaw(ctx context.Context, key string) ([]byte, Tier, error) {
	for _, t := range h.tiers {
		data, err := t.store.Load(ctx, h.key(key))
		if err == nil {
			return data, t.name, nil
		}
		if !errors.Is(err, domain.ErrKeyNotFound) {
			h.logger.Warn("storage tier failed", "tier", t.name, "key", key, "err", err)
		}
	}
	return nil, "", domain.ErrKeyNotFound
}

// Load decodes the value of key into v. When no tier holds the key, opts.Default
// is copied into v (if set) and ErrKeyNotFound is returned.
func (h *Helper) Load(ctx context.Context, key string, v any, opts LoadOptions) (Tier, error) {
	data, t, err := h.LoadRaw(ctx, key)
	if err != nil {
		if opts.Default != nil {
			if def, mErr := json.Marshal(opts.Default); mErr == nil {
				_ = json.Unmarshal(def, v)
			}
		}
		return "", err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return t, fmt.Errorf("decode %q from %s: %w", key, t, err)
	}
	return t, nil
}

// Remove deletes key from every tier.
func (h *Helper) Remove(ctx context.Context, key string) error {
	var errs []error
	for _, t := range h.tiers {
		if err := t.store.Delete(ctx, h.key(key)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
		}
	}
	return errors.Join(errs...)
}

// Clear deletes every key under the prefix from every tier.
func (h *Helper) Clear(ctx context.Context) error {
	var errs []error
	for _, t := range h.tiers {
		keys, err := t.store.List(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
			continue
		}
		for _, k := range keys {
			if !strings.HasPrefix(k, h.prefix) {
				continue
			}
			if err := t.store.Delete(ctx, k); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
			}
		}
	}
	return errors.Join(errs...)
}
