// Package http exposes the flow editor as a REST API with server-sent events.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/flowbuilder"
	"github.com/aretw0/flowbuilder/internal/logging"
	"github.com/aretw0/flowbuilder/pkg/canvas"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/interaction"
	"github.com/aretw0/flowbuilder/pkg/render"
	"github.com/aretw0/flowbuilder/pkg/simulator"
	"github.com/aretw0/flowbuilder/pkg/storage"
	"github.com/aretw0/flowbuilder/pkg/viewport"
	"github.com/go-chi/chi/v5"
)

// Editor defines the flow editor operations served over HTTP.
type Editor interface {
	Flow() domain.Flow
	Node(id string) (domain.Node, bool)
	Replace(flow domain.Flow) []error
	Reset() domain.Flow
	Save(ctx context.Context) error

	CreateNode(kind domain.Kind, position domain.Point, payload domain.Payload) (domain.Node, error)
	UpdatePayload(id string, payload domain.Payload) (domain.Node, error)
	MoveNode(id string, position domain.Point) error
	DuplicateNode(id string) (domain.Node, error)
	DeleteNode(id string) bool
	CreateEdge(fromID, fromPort, toID, toPort string) (domain.Edge, error)
	DeleteEdge(id string) bool

	Handle(cmd interaction.Command) interaction.Result
	Scene() render.Scene
	Canvas() canvas.State
	SetViewport(v viewport.Viewport)
	Subscribe(fn func(render.Scene)) func()
	ReportView(nodeIDs []string)
	CheckSync() bool
	FocusRegained()

	Greeting() string
	Simulate(ctx context.Context, msg string) (simulator.Reply, error)
	Notices() []domain.Notice
	Departments() []domain.Department
	Assistants(ctx context.Context) ([]domain.Assistant, error)
}

var _ Editor = (*flowbuilder.Editor)(nil)

// Server holds the handlers of the admin API.
type Server struct {
	Editor  Editor
	Streams *StreamManager

	logger  *slog.Logger
	secret  []byte
	origins []string
	metrics http.Handler
	ws      http.Handler
	storage *storage.Helper
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams shares an existing stream manager, typically one also
// registered as the editor's notifier and sink.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithSecret enables bearer token authentication of the API routes.
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		if len(secret) > 0 {
			s.secret = secret
		}
	}
}

// WithAllowedOrigins sets the CORS allow list. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithMetricsHandler mounts a prometheus handler on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithWebsocket mounts a websocket handler on /ws.
func WithWebsocket(h http.Handler) Option {
	return func(s *Server) {
		s.ws = h
	}
}

// WithStorage exposes the generic storage helper on /storage for the wider admin app.
func WithStorage(h *storage.Helper) Option {
	return func(s *Server) {
		s.storage = h
	}
}

// NewHandler creates the HTTP handler for the editor.
// Every re-rendered scene is broadcast on /events.
func NewHandler(editor Editor, opts ...Option) http.Handler {
	s := &Server{
		Editor:  editor,
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	editor.Subscribe(func(scene render.Scene) {
		s.Streams.Broadcast(EventScene, scene)
	})

	r := chi.NewRouter()
	r.Use(s.cors)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)

		r.Get("/flow", s.GetFlow)
		r.Put("/flow", s.PutFlow)
		r.Post("/flow/save", s.SaveFlow)
		r.Post("/flow/reset", s.ResetFlow)

		r.Post("/nodes", s.CreateNode)
		r.Get("/nodes/{id}", s.GetNode)
		r.Patch("/nodes/{id}", s.PatchNode)
		r.Delete("/nodes/{id}", s.DeleteNode)
		r.Put("/nodes/{id}/position", s.MoveNode)
		r.Post("/nodes/{id}/duplicate", s.DuplicateNode)

		r.Post("/edges", s.CreateEdge)
		r.Delete("/edges/{id}", s.DeleteEdge)

		r.Post("/commands", s.HandleCommand)
		r.Put("/viewport", s.SetViewport)
		r.Get("/scene", s.GetScene)
		r.Get("/scene.svg", s.GetSceneSVG)
		r.Get("/graph.mmd", s.GetMermaid)
		r.Post("/sync", s.Sync)
		r.Post("/focus", s.Focus)

		r.Post("/simulate", s.Simulate)
		r.Get("/simulate/greeting", s.Greeting)

		r.Get("/notices", s.GetNotices)
		r.Get("/events", s.SubscribeEvents)
		if s.ws != nil {
			r.Method(http.MethodGet, "/ws", s.ws)
		}

		r.Get("/catalog/departments", s.GetDepartments)
		r.Get("/catalog/assistants", s.GetAssistants)

		if s.storage != nil {
			r.Get("/storage/{key}", s.GetStored)
			r.Put("/storage/{key}", s.PutStored)
			r.Delete("/storage/{key}", s.DeleteStored)
			r.Delete("/storage", s.ClearStored)
		}
	})

	return r
}

func (s *Server) cors(next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(s.origins))
	for _, o := range s.origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, If-Match, If-None-Match")
		w.Header().Set("Access-Control-Expose-Headers", "ETag")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Flowbuilder API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := LoadSpec(r.Context()); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "flowbuilder-http",
		"version":     strings.TrimSpace(flowbuilder.Version),
		"api_version": apiVersion,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps editor errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNodeNotFound), errors.Is(err, domain.ErrEdgeNotFound):
		return http.StatusNotFound
	case domain.IsValidationRejection(err), errors.Is(err, domain.ErrInvalidKind):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
