// Package mcp exposes the flow editor to AI agents over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/flowbuilder"
	"github.com/aretw0/flowbuilder/internal/logging"
	"github.com/aretw0/flowbuilder/internal/presentation/graph"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/simulator"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// FlowURI is the resource holding the current flow as JSON.
	FlowURI = "flowbuilder://flow"
	// MermaidURI is the resource holding the flow as a Mermaid chart.
	MermaidURI = "flowbuilder://flow.mmd"
)

// Editor defines the flow editor operations exposed as MCP tools.
type Editor interface {
	Flow() domain.Flow
	CreateNode(kind domain.Kind, position domain.Point, payload domain.Payload) (domain.Node, error)
	UpdatePayload(id string, payload domain.Payload) (domain.Node, error)
	MoveNode(id string, position domain.Point) error
	DeleteNode(id string) bool
	CreateEdge(fromID, fromPort, toID, toPort string) (domain.Edge, error)
	DeleteEdge(id string) bool
	Save(ctx context.Context) error
	Simulate(ctx context.Context, msg string) (simulator.Reply, error)
	Departments() []domain.Department
}

var _ Editor = (*flowbuilder.Editor)(nil)

// NodeArgs are the arguments of create_node.
type NodeArgs struct {
	Kind    string  `json:"kind"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Payload string  `json:"payload"`
}

// UpdateArgs are the arguments of update_node.
type UpdateArgs struct {
	NodeID  string `json:"node_id"`
	Payload string `json:"payload"`
}

// MoveArgs are the arguments of move_node.
type MoveArgs struct {
	NodeID string  `json:"node_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ConnectArgs are the arguments of connect.
type ConnectArgs struct {
	From     string `json:"from"`
	FromPort string `json:"from_port"`
	To       string `json:"to"`
	ToPort   string `json:"to_port"`
}

// IDArgs carry a single node or edge id.
type IDArgs struct {
	ID string `json:"id"`
}

// SimulateArgs are the arguments of simulate.
type SimulateArgs struct {
	Message string `json:"message"`
}

// Summary is the result of mutating tools: the affected element and the graph size.
type Summary struct {
	Node  *domain.Node `json:"node,omitempty" jsonschema_description:"The created or updated node"`
	Edge  *domain.Edge `json:"edge,omitempty" jsonschema_description:"The created edge"`
	Nodes int          `json:"nodes" jsonschema_description:"Number of nodes in the flow"`
	Edges int          `json:"edges" jsonschema_description:"Number of edges in the flow"`
}

// Server wraps the Editor and exposes it as an MCP Server.
type Server struct {
	editor    Editor
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(editor Editor, opts ...Option) *Server {
	s := &Server{
		editor:    editor,
		mcpServer: server.NewMCPServer("flowbuilder-mcp", strings.TrimSpace(flowbuilder.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: get_flow
	s.mcpServer.AddTool(mcp.NewTool("get_flow",
		mcp.WithDescription("Get the current flow: nodes, edges and metadata."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.editor.Flow())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: list_departments
	s.mcpServer.AddTool(mcp.NewTool("list_departments",
		mcp.WithDescription("List the departments a handoff node can route to."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.editor.Departments())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: create_node
	s.mcpServer.AddTool(mcp.NewTool("create_node",
		mcp.WithDescription("Add a node to the flow."),
		mcp.WithString("kind", mcp.Required(), mcp.Enum("welcome", "intent", "handoff", "condition", "message"), mcp.Description("Node kind")),
		mcp.WithNumber("x", mcp.Description("World x coordinate")),
		mcp.WithNumber("y", mcp.Description("World y coordinate")),
		mcp.WithString("payload", mcp.Description("JSON object with the node payload (title, intents, department...)")),
		mcp.WithOutputSchema[Summary](),
	), mcp.NewStructuredToolHandler(s.handleCreateNode))

	// TOOL: update_node
	s.mcpServer.AddTool(mcp.NewTool("update_node",
		mcp.WithDescription("Replace the payload of a node. The kind cannot change."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node ID")),
		mcp.WithString("payload", mcp.Required(), mcp.Description("JSON object with the new payload")),
		mcp.WithOutputSchema[Summary](),
	), mcp.NewStructuredToolHandler(s.handleUpdateNode))

	// TOOL: move_node
	s.mcpServer.AddTool(mcp.NewTool("move_node",
		mcp.WithDescription("Move a node to a world position."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node ID")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("World x coordinate")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("World y coordinate")),
		mcp.WithOutputSchema[Summary](),
	), mcp.NewStructuredToolHandler(s.handleMoveNode))

	// TOOL: delete_node
	s.mcpServer.AddTool(mcp.NewTool("delete_node",
		mcp.WithDescription("Delete a node and every edge touching it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID")),
		mcp.WithOutputSchema[Summary](),
	), mcp.NewStructuredToolHandler(s.handleDeleteNode))

	// TOOL: connect
	s.mcpServer.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Connect an output port to an input port of another node."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Source node ID")),
		mcp.WithString("from_port", mcp.Description("Source output port (default: out)")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target node ID")),
		mcp.WithString("to_port", mcp.Description("Target input port (default: in)")),
		mcp.WithOutputSchema[Summary](),
	), mcp.NewStructuredToolHandler(s.handleConnect))

	// TOOL: disconnect
	s.mcpServer.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Delete an edge."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Edge ID")),
		mcp.WithOutputSchema[Summary](),
	), mcp.NewStructuredToolHandler(s.handleDisconnect))

	// TOOL: save_flow
	s.mcpServer.AddTool(mcp.NewTool("save_flow",
		mcp.WithDescription("Persist the flow immediately and publish it to the chatbot runtime."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := s.editor.Save(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
		}
		return mcp.NewToolResultText("saved"), nil
	})

	// TOOL: simulate
	s.mcpServer.AddTool(mcp.NewTool("simulate",
		mcp.WithDescription("Ask the chat simulator how the bot would answer a visitor message."),
		mcp.WithString("message", mcp.Required(), mcp.Description("Visitor message")),
		mcp.WithOutputSchema[simulator.Reply](),
	), mcp.NewStructuredToolHandler(s.handleSimulate))
}

func (s *Server) summary() Summary {
	flow := s.editor.Flow()
	return Summary{Nodes: len(flow.Nodes), Edges: len(flow.Edges)}
}

func parsePayload(raw string) (domain.Payload, error) {
	var p domain.Payload
	if strings.TrimSpace(raw) == "" {
		return p, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("invalid payload: %w", err)
	}
	return p, nil
}

// Handler methods for structured tools

func (s *Server) handleCreateNode(ctx context.Context, request mcp.CallToolRequest, args NodeArgs) (Summary, error) {
	kind, err := domain.ParseKind(args.Kind)
	if err != nil {
		return Summary{}, err
	}
	payload, err := parsePayload(args.Payload)
	if err != nil {
		return Summary{}, err
	}
	node, err := s.editor.CreateNode(kind, domain.Point{X: args.X, Y: args.Y}, payload)
	if err != nil {
		return Summary{}, fmt.Errorf("create failed: %w", err)
	}
	s.logger.Debug("MCP: node created", "node_id", node.ID, "kind", kind)

	out := s.summary()
	out.Node = &node
	return out, nil
}

func (s *Server) handleUpdateNode(ctx context.Context, request mcp.CallToolRequest, args UpdateArgs) (Summary, error) {
	payload, err := parsePayload(args.Payload)
	if err != nil {
		return Summary{}, err
	}
	node, err := s.editor.UpdatePayload(args.NodeID, payload)
	if err != nil {
		return Summary{}, fmt.Errorf("update failed: %w", err)
	}
	out := s.summary()
	out.Node = &node
	return out, nil
}

func (s *Server) handleMoveNode(ctx context.Context, request mcp.CallToolRequest, args MoveArgs) (Summary, error) {
	if err := s.editor.MoveNode(args.NodeID, domain.Point{X: args.X, Y: args.Y}); err != nil {
		return Summary{}, fmt.Errorf("move failed: %w", err)
	}
	return s.summary(), nil
}

func (s *Server) handleDeleteNode(ctx context.Context, request mcp.CallToolRequest, args IDArgs) (Summary, error) {
	if !s.editor.DeleteNode(args.ID) {
		return Summary{}, fmt.Errorf("delete %q: %w", args.ID, domain.ErrNodeNotFound)
	}
	return s.summary(), nil
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest, args ConnectArgs) (Summary, error) {
	if args.FromPort == "" {
		args.FromPort = domain.PortOut
	}
	if args.ToPort == "" {
		args.ToPort = domain.PortIn
	}
	edge, err := s.editor.CreateEdge(args.From, args.FromPort, args.To, args.ToPort)
	if err != nil {
		if domain.IsValidationRejection(err) {
			s.logger.Info("MCP: connection refused", "from", args.From, "to", args.To, "err", err)
		}
		return Summary{}, fmt.Errorf("connect failed: %w", err)
	}
	out := s.summary()
	out.Edge = &edge
	return out, nil
}

func (s *Server) handleDisconnect(ctx context.Context, request mcp.CallToolRequest, args IDArgs) (Summary, error) {
	if !s.editor.DeleteEdge(args.ID) {
		return Summary{}, fmt.Errorf("disconnect %q: %w", args.ID, domain.ErrEdgeNotFound)
	}
	return s.summary(), nil
}

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest, args SimulateArgs) (simulator.Reply, error) {
	msg := strings.TrimSpace(args.Message)
	if msg == "" {
		return simulator.Reply{}, errors.New("message must not be empty")
	}
	return s.editor.Simulate(ctx, msg)
}

func (s *Server) registerResources() {
	// EXPOSE: flowbuilder://flow
	s.mcpServer.AddResource(mcp.NewResource(FlowURI, "Current Flow",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.editor.Flow())
		if err != nil {
			return nil, fmt.Errorf("failed to encode flow: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      FlowURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: flowbuilder://flow.mmd
	s.mcpServer.AddResource(mcp.NewResource(MermaidURI, "Current Flow (Mermaid)",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      MermaidURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.editor.Flow(), nil),
			},
		}, nil
	})
}
