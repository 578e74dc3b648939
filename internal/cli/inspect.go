package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/flowbuilder/internal/config"
	"github.com/aretw0/flowbuilder/internal/logging"
	"github.com/aretw0/flowbuilder/internal/presentation/graph"
	httpAdapter "github.com/aretw0/flowbuilder/pkg/adapters/http"
	"github.com/aretw0/flowbuilder/pkg/adapters/mcp"
	"github.com/aretw0/flowbuilder/pkg/domain"
	fgraph "github.com/aretw0/flowbuilder/pkg/graph"
	"github.com/aretw0/flowbuilder/pkg/persistence"
	"github.com/aretw0/flowbuilder/pkg/render"
)

// Graph export formats.
const (
	FormatMermaid = "mermaid"
	FormatSVG     = "svg"
	FormatJSON    = "json"
)

// RunGraph writes the saved flow (or the default flow) in the given format.
func RunGraph(ctx context.Context, cfg config.Config, w io.Writer, format string) error {
	stack, err := NewStack(ctx, cfg, logging.NewNop())
	if err != nil {
		return err
	}
	defer stack.Close(ctx)

	switch format {
	case FormatMermaid, "":
		_, err = io.WriteString(w, graph.GenerateMermaid(stack.Editor.Flow(), nil))
	case FormatSVG:
		err = render.WriteSVG(w, stack.Editor.Scene())
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(stack.Editor.Flow())
	default:
		return fmt.Errorf("unknown format %q (supported: mermaid, svg, json)", format)
	}
	return err
}

// RunValidate checks the saved snapshot without repairing it.
// A missing snapshot is reported but is not an error: the editor would start from the default flow.
func RunValidate(ctx context.Context, cfg config.Config, w io.Writer) error {
	store, closeFn, err := OpenStore(ctx, cfg, logging.NewNop())
	if err != nil {
		return err
	}
	defer closeFn()

	data, err := store.Load(ctx, cfg.Key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		fmt.Fprintf(w, "No flow saved under %q; the default flow will be used.\n", cfg.Key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", cfg.Key, err)
	}

	flow, err := persistence.Decode(data)
	if err != nil {
		return err
	}
	if err := fgraph.Validate(flow); err != nil {
		return err
	}
	fmt.Fprintf(w, "Flow %q is valid: %d nodes, %d edges (schema %s).\n",
		cfg.Key, len(flow.Nodes), len(flow.Edges), flow.Metadata.Version)
	return nil
}

// RunToken prints an admin token signed with the configured secret.
func RunToken(cfg config.Config, w io.Writer, subject string, ttl time.Duration) error {
	if cfg.JWTSecret == "" {
		return errors.New("no jwt secret configured (set FLOWBUILDER_JWT_SECRET)")
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}
	token, err := httpAdapter.IssueToken([]byte(cfg.JWTSecret), subject, ttl)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// RunMCP serves the editor to AI agents until interrupted.
// Logs go to Stderr so they never corrupt JSON-RPC on Stdout.
func RunMCP(cfg config.Config, transport string, port int, debug bool) error {
	logger := NewLogger(cfg, true, debug)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	stack, err := NewStack(sigCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close(context.WithoutCancel(sigCtx))

	srv := mcp.NewServer(stack.Editor, mcp.WithLogger(logger))
	switch transport {
	case TransportStdio:
		logger.Info("Starting Flowbuilder MCP Server (Stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		logger.Info("Starting Flowbuilder MCP Server (SSE)", "port", port)
		return srv.ServeSSE(sigCtx, port)
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
