package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type saveConfigRequest struct {
	Name   string          `json:"name"`
	Config json.RawMessage `json:"config"`
}

// POST /api/configs
func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	if s.configStore == nil {
		s.writeError(w, http.StatusServiceUnavailable, "saved configurations require a database")
		return
	}
	var req saveConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || len(req.Config) == 0 {
		s.writeError(w, http.StatusBadRequest, "name and config are required")
		return
	}
	rec, err := s.configStore.Save(req.Name, req.Config)
	if err != nil {
		log.Error().Err(err).Msg("failed to save config")
		s.writeError(w, http.StatusInternalServerError, "failed to save config")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(rec)
}

// GET /api/configs
func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	if s.configStore == nil {
		s.writeError(w, http.StatusServiceUnavailable, "saved configurations require a database")
		return
	}
	recs, err := s.configStore.List()
	if err != nil {
		log.Error().Err(err).Msg("failed to list configs")
		s.writeError(w, http.StatusInternalServerError, "failed to list configs")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"configs": recs})
}

// GET /api/configs/{id}
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.configStore == nil {
		s.writeError(w, http.StatusServiceUnavailable, "saved configurations require a database")
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := s.configStore.Get(id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get config")
		s.writeError(w, http.StatusInternalServerError, "failed to get config")
		return
	}
	if rec == nil {
		s.writeError(w, http.StatusNotFound, "config not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rec)
}

// DELETE /api/configs/{id}
func (s *Server) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	if s.configStore == nil {
		s.writeError(w, http.StatusServiceUnavailable, "saved configurations require a database")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.configStore.Delete(id); err != nil {
		log.Error().Err(err).Msg("failed to delete config")
		s.writeError(w, http.StatusInternalServerError, "failed to delete config")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
