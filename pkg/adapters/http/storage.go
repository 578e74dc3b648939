package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/storage"
	"github.com/go-chi/chi/v5"
)

// GetStored handles the GET /storage/{key} request.
// The X-Storage-Tier header names the tier that served the value.
func (s *Server) GetStored(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	data, tier, err := s.storage.LoadRaw(r.Context(), key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Storage-Tier", string(tier))
	w.Write(data)
}

// PutStored handles the PUT /storage/{key} request.
// ?reduce=false disables the size-reduction retry, ?verify=false the read-back check.
func (s *Server) PutStored(w http.ResponseWriter, r *http.Request) {
	var value any
	if err := decodeBody(w, r, &value); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	q := r.URL.Query()
	opts := storage.SaveOptions{
		NoReduce: q.Get("reduce") == "false",
		NoVerify: q.Get("verify") == "false",
	}

	res, err := s.storage.Save(r.Context(), chi.URLParam(r, "key"), value, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		s.logger.Error("PutStored failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": !res.Mismatch, "result": res})
}

// DeleteStored handles the DELETE /storage/{key} request.
func (s *Server) DeleteStored(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Remove(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ClearStored handles the DELETE /storage request.
func (s *Server) ClearStored(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
