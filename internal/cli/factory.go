package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/flowbuilder"
	"github.com/aretw0/flowbuilder/internal/config"
	"github.com/aretw0/flowbuilder/pkg/adapters/file"
	"github.com/aretw0/flowbuilder/pkg/adapters/memory"
	"github.com/aretw0/flowbuilder/pkg/adapters/redis"
	sqlstore "github.com/aretw0/flowbuilder/pkg/adapters/sql"
	"github.com/aretw0/flowbuilder/pkg/catalog"
	"github.com/aretw0/flowbuilder/pkg/observability"
	"github.com/aretw0/flowbuilder/pkg/persistence/middleware"
	"github.com/aretw0/flowbuilder/pkg/ports"
)

// closer releases a backend connection. Backends without one get a no-op.
type closer func() error

func noClose() error { return nil }

// OpenStore builds the snapshot store selected by cfg, wrapped in the
// configured middleware: compression outside, encryption inside, so data is
// compressed before it is encrypted.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.KVStore, func() error, error) {
	// 1. Backend
	base, closeFn, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("storage ready", "backend", cfg.Storage.Backend)

	// 2. Middleware
	var mws []middleware.Middleware
	if cfg.Compress {
		mws = append(mws, middleware.NewCompressionMiddleware())
	}
	if cfg.EncryptionKey != "" {
		enc, err := encryptionConfig(cfg)
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}
	return middleware.Chain(base, mws...), closeFn, nil
}

func openBackend(ctx context.Context, cfg config.Config) (ports.KVStore, closer, error) {
	s := cfg.Storage
	switch s.Backend {
	case config.BackendMemory:
		return memory.NewStore(memory.WithMaxBytes(int(s.MaxBytes))), noClose, nil

	case config.BackendFile:
		return file.New(s.Path, file.WithMaxBytes(s.MaxBytes)), noClose, nil

	case config.BackendRedis:
		var opts []redis.Option
		if s.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(s.Redis.Prefix))
		}
		if s.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(s.Redis.TTL))
		}
		store := redis.New(s.Redis.Addr, s.Redis.Password, s.Redis.DB, opts...)
		return store, store.Close, nil

	case config.BackendSQLite, config.BackendPostgres:
		dialect, _ := sqlstore.DetectDialect(s.DSN)
		if (dialect == sqlstore.Postgres) != (s.Backend == config.BackendPostgres) {
			return nil, nil, fmt.Errorf("dsn does not match storage backend %q", s.Backend)
		}
		store, err := sqlstore.Open(ctx, s.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s: %w", s.Backend, err)
		}
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", s.Backend)
}

func encryptionConfig(cfg config.Config) (middleware.EncryptionConfig, error) {
	active, err := config.DecodeKey(cfg.EncryptionKey)
	if err != nil {
		return middleware.EncryptionConfig{}, fmt.Errorf("encryption key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range cfg.FallbackKeys {
		key, err := config.DecodeKey(k)
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("fallback key: %w", err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

// LoadCatalog returns the catalog file named by cfg, or the built-in catalog.
func LoadCatalog(cfg config.Config) (*catalog.Static, error) {
	if cfg.CatalogFile == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.LoadFile(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return c, nil
}

// Stack is an editor with the resources it owns.
type Stack struct {
	Editor  *flowbuilder.Editor
	Store   ports.KVStore // The wrapped backend, shared with the storage helper
	Catalog *catalog.Static
	Metrics *observability.Metrics
	Logger  *slog.Logger
	close   func() error
}

// Close flushes pending writes and releases the storage backend.
func (s *Stack) Close(ctx context.Context) error {
	err := s.Editor.Close(ctx)
	if cerr := s.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// NewStack initializes an editor with standard CLI conventions and loads the saved flow.
func NewStack(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...flowbuilder.Option) (*Stack, error) {
	// 1. Storage
	store, closeFn, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// 2. Catalog
	cat, err := LoadCatalog(cfg)
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	// 3. Editor
	metrics := observability.New()
	opts := []flowbuilder.Option{
		flowbuilder.WithStore(store),
		flowbuilder.WithCatalog(cat),
		flowbuilder.WithLogger(logger),
		flowbuilder.WithMetrics(metrics),
		flowbuilder.WithKey(cfg.Key),
		flowbuilder.WithDebounce(cfg.Debounce),
		flowbuilder.WithTypingDelay(cfg.TypingDelay),
	}
	editor, err := flowbuilder.New(append(opts, extra...)...)
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("error initializing editor: %w", err)
	}

	// 4. Restore
	src := editor.Load(ctx)
	logger.Info("editor ready", "key", cfg.Key, "source", src)

	return &Stack{Editor: editor, Store: store, Catalog: cat, Metrics: metrics, Logger: logger, close: closeFn}, nil
}
