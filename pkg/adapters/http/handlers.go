package http

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/flowbuilder/internal/presentation/graph"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/interaction"
	"github.com/aretw0/flowbuilder/pkg/render"
	"github.com/aretw0/flowbuilder/pkg/simulator"
	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
	"lukechampine.com/blake3"
)

// maxBody bounds request bodies; a flow import is the largest payload.
const maxBody = 5 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// flowETag is a strong validator of the flow content.
func flowETag(flow domain.Flow) string {
	data, err := json.Marshal(flow)
	if err != nil {
		return ""
	}
	sum := blake3.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// GetFlow handles the GET /flow request.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	flow := s.Editor.Flow()
	etag := flowETag(flow)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// PutFlow handles the PUT /flow request (import).
// A stale If-Match is refused so that two admins cannot silently overwrite each other.
func (s *Server) PutFlow(w http.ResponseWriter, r *http.Request) {
	if match := r.Header.Get("If-Match"); match != "" && match != "*" {
		if current := flowETag(s.Editor.Flow()); match != current {
			writeError(w, http.StatusConflict, fmt.Errorf("flow changed since %s (now %s)", match, current))
			return
		}
	}

	var flow domain.Flow
	if err := decodeBody(w, r, &flow); err != nil {
		writeError(w, http.StatusBadRequest, err)
		s.logger.Warn("PutFlow: invalid request body", "error", err)
		return
	}

	problems := s.Editor.Replace(flow)
	dropped := make([]string, len(problems))
	for i, p := range problems {
		dropped[i] = p.Error()
	}
	w.Header().Set("ETag", flowETag(s.Editor.Flow()))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "dropped": dropped})
}

// SaveFlow handles the POST /flow/save request.
func (s *Server) SaveFlow(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.Save(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		s.logger.Error("SaveFlow failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ResetFlow handles the POST /flow/reset request.
func (s *Server) ResetFlow(w http.ResponseWriter, r *http.Request) {
	flow := s.Editor.Reset()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "nodes": len(flow.Nodes), "edges": len(flow.Edges)})
}

type createNodeRequest struct {
	Kind     string         `json:"kind"`
	Position domain.Point   `json:"position"`
	Payload  domain.Payload `json:"payload"`
}

// CreateNode handles the POST /nodes request.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	var body createNodeRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	kind, err := domain.ParseKind(body.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	node, err := s.Editor.CreateNode(kind, body.Position, body.Payload)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// GetNode handles the GET /nodes/{id} request.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	node, ok := s.Editor.Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%q: %w", id, domain.ErrNodeNotFound))
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// PatchNode handles the PATCH /nodes/{id} request.
// The body is merged into the current payload; unknown fields are refused.
func (s *Server) PatchNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	node, ok := s.Editor.Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%q: %w", id, domain.ErrNodeNotFound))
		return
	}

	var patch map[string]any
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	payload := node.Payload.Clone()
	// A new department without explicit agents or color takes the department's own.
	if dept, ok := patch["department"]; ok && dept != node.Payload.Department {
		if _, ok := patch["agents"]; !ok {
			payload.Agents = nil
		}
		if _, ok := patch["color"]; !ok {
			payload.Color = ""
		}
	}
	// ZeroFields replaces slices instead of overwriting their leading items.
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &payload,
		ErrorUnused: true,
		ZeroFields:  true,
		TagName:     "mapstructure",
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := dec.Decode(patch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid payload: %w", err))
		return
	}

	updated, err := s.Editor.UpdatePayload(id, payload)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteNode handles the DELETE /nodes/{id} request.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.Editor.DeleteNode(id) {
		writeError(w, http.StatusNotFound, fmt.Errorf("%q: %w", id, domain.ErrNodeNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// MoveNode handles the PUT /nodes/{id}/position request.
func (s *Server) MoveNode(w http.ResponseWriter, r *http.Request) {
	var pos domain.Point
	if err := decodeBody(w, r, &pos); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Editor.MoveNode(chi.URLParam(r, "id"), pos); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DuplicateNode handles the POST /nodes/{id}/duplicate request.
func (s *Server) DuplicateNode(w http.ResponseWriter, r *http.Request) {
	node, err := s.Editor.DuplicateNode(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

type createEdgeRequest struct {
	From     string `json:"from"`
	FromPort string `json:"from_port"`
	To       string `json:"to"`
	ToPort   string `json:"to_port"`
}

// CreateEdge handles the POST /edges request.
func (s *Server) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var body createEdgeRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	edge, err := s.Editor.CreateEdge(body.From, body.FromPort, body.To, body.ToPort)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

// DeleteEdge handles the DELETE /edges/{id} request.
func (s *Server) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.Editor.DeleteEdge(id) {
		writeError(w, http.StatusNotFound, fmt.Errorf("%q: %w", id, domain.ErrEdgeNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleCommand handles the POST /commands request.
func (s *Server) HandleCommand(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cmd, err := interaction.Decode(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		s.logger.Warn("HandleCommand: invalid command", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Handle(cmd).Encode())
}

// SetViewport handles the PUT /viewport request.
func (s *Server) SetViewport(w http.ResponseWriter, r *http.Request) {
	v := s.Editor.Canvas().Viewport
	if err := decodeBody(w, r, &v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.Editor.SetViewport(v)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "viewport": s.Editor.Canvas().Viewport})
}

// GetScene handles the GET /scene request.
func (s *Server) GetScene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Editor.Scene())
}

// GetSceneSVG handles the GET /scene.svg request.
func (s *Server) GetSceneSVG(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := render.WriteSVG(w, s.Editor.Scene()); err != nil {
		s.logger.Error("GetSceneSVG failed", "error", err)
	}
}

// GetMermaid handles the GET /graph.mmd request.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	overlay := &graph.GraphOverlay{Selected: s.Editor.Canvas().Selected}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(s.Editor.Flow(), overlay))
}

type syncRequest struct {
	NodeIDs []string `json:"node_ids"`
}

// Sync handles the POST /sync request.
func (s *Server) Sync(w http.ResponseWriter, r *http.Request) {
	var body syncRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.NodeIDs == nil {
		body.NodeIDs = []string{}
	}
	s.Editor.ReportView(body.NodeIDs)
	writeJSON(w, http.StatusOK, map[string]bool{"in_sync": s.Editor.CheckSync()})
}

// Focus handles the POST /focus request.
func (s *Server) Focus(w http.ResponseWriter, r *http.Request) {
	s.Editor.FocusRegained()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type simulateRequest struct {
	Message string `json:"message"`
}

// Simulate handles the POST /simulate request.
func (s *Server) Simulate(w http.ResponseWriter, r *http.Request) {
	var body simulateRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	msg := strings.TrimSpace(body.Message)
	if msg == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("message must not be empty"))
		return
	}
	reply, err := s.Editor.Simulate(r.Context(), msg)
	switch {
	case errors.Is(err, simulator.ErrInputTooLarge), errors.Is(err, simulator.ErrInvalidUTF8):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		// The client went away mid-typing.
		s.logger.Debug("Simulate aborted", "error", err)
		writeError(w, http.StatusRequestTimeout, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// Greeting handles the GET /simulate/greeting request.
func (s *Server) Greeting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"text": s.Editor.Greeting()})
}

// GetNotices handles the GET /notices request.
func (s *Server) GetNotices(w http.ResponseWriter, r *http.Request) {
	notices := s.Editor.Notices()
	if notices == nil {
		notices = []domain.Notice{}
	}
	writeJSON(w, http.StatusOK, notices)
}

// GetDepartments handles the GET /catalog/departments request.
func (s *Server) GetDepartments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Editor.Departments())
}

// GetAssistants handles the GET /catalog/assistants request.
func (s *Server) GetAssistants(w http.ResponseWriter, r *http.Request) {
	assistants, err := s.Editor.Assistants(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		s.logger.Error("GetAssistants failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, assistants)
}

