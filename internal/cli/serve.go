package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/flowbuilder"
	"github.com/aretw0/flowbuilder/internal/config"
	httpAdapter "github.com/aretw0/flowbuilder/pkg/adapters/http"
	"github.com/aretw0/flowbuilder/pkg/adapters/memory"
	"github.com/aretw0/flowbuilder/pkg/adapters/ws"
	"github.com/aretw0/flowbuilder/pkg/interaction"
	"github.com/aretw0/flowbuilder/pkg/storage"
)

const (
	// shutdownTimeout bounds the graceful shutdown of the HTTP server.
	shutdownTimeout = 5 * time.Second
	// AdminPrefix namespaces the keys the wider admin app stores next to the flow.
	AdminPrefix = "admin:"
)

// Service is the admin API wired to an editor.
type Service struct {
	*Stack
	Handler http.Handler
	Hub     *ws.Hub
	Streams *httpAdapter.StreamManager
}

// NewService builds the editor and the handler serving it.
// Saved snapshots and notices are pushed to websocket and SSE clients.
func NewService(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Service, error) {
	var editor *flowbuilder.Editor

	streams := httpAdapter.NewStreamManager(logger)
	hub := ws.NewHub(
		ws.WithLogger(logger),
		ws.WithAllowedOrigins(cfg.AllowedOrigins),
		ws.WithHandler(func(ctx context.Context, frame []byte) (any, error) {
			cmd, err := interaction.Decode(frame)
			if err != nil {
				return nil, err
			}
			return editor.Handle(cmd).Encode(), nil
		}),
	)

	stack, err := NewStack(ctx, cfg, logger,
		flowbuilder.WithSink(hub),
		flowbuilder.WithSink(streams),
		flowbuilder.WithNotifier(hub),
		flowbuilder.WithNotifier(streams),
	)
	if err != nil {
		return nil, err
	}
	editor = stack.Editor

	helper := storage.New(
		storage.WithPrimary(stack.Store),
		storage.WithSession(memory.NewStore()),
		storage.WithPrefix(AdminPrefix),
		storage.WithLogger(logger),
		storage.WithMetrics(stack.Metrics),
	)

	handler := httpAdapter.NewHandler(editor,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithStreams(streams),
		httpAdapter.WithSecret([]byte(cfg.JWTSecret)),
		httpAdapter.WithAllowedOrigins(cfg.AllowedOrigins),
		httpAdapter.WithMetricsHandler(stack.Metrics.Handler()),
		httpAdapter.WithWebsocket(hub),
		httpAdapter.WithStorage(helper),
	)
	return &Service{Stack: stack, Handler: handler, Hub: hub, Streams: streams}, nil
}

// RunServe starts the admin API and blocks until an interrupt or a server error.
// Pending writes are flushed before returning.
func RunServe(cfg config.Config, debug bool) error {
	logger := NewLogger(cfg, true, debug)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	svc, err := NewService(sigCtx, cfg, logger)
	if err != nil {
		return err
	}

	// 1. Background consistency checks
	runDone := make(chan error, 1)
	go func() { runDone <- svc.Editor.Run(sigCtx) }()

	// 2. Listener
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           svc.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting Flowbuilder Server", "address", cfg.Listen, "backend", cfg.Storage.Backend, "key", cfg.Key)
		serverErrors <- srv.ListenAndServe()
	}()

	// 3. Wait
	var serveErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server error: %w", err)
		}
		sigCtx.Cancel()
	case <-sigCtx.Done():
		logger.Info("Start shutdown", "signal", sigCtx.Signal())
	}

	// 4. Shutdown
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
		_ = srv.Close()
	}
	if err := <-runDone; err != nil {
		logger.Error("final flush failed", "err", err)
	}
	if err := svc.Close(ctx); err != nil && serveErr == nil {
		serveErr = err
	}
	logger.Info("Flowbuilder Server stopped gracefully")
	return serveErr
}
