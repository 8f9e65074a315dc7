package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nezpik/pistology-tos/internal/edi/ingest"
	"github.com/nezpik/pistology-tos/internal/storage"
	"github.com/nezpik/pistology-tos/internal/types"
)

const ediPathPrefix = "/api/edi/"

type ingestRequest struct {
	MessageType types.MessageType `json:"message_type"`
	Content     string            `json:"content"`
}

// handleEdi dispatches POST/GET /api/edi/{container_id}.
func (s *Server) handleEdi(w http.ResponseWriter, r *http.Request) {
	containerID := strings.TrimPrefix(r.URL.Path, ediPathPrefix)
	if containerID == "" {
		writeError(w, http.StatusBadRequest, "container_id is required")
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r, containerID)
	case http.MethodGet:
		s.handleGet(w, r, containerID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request, containerID string) {
	var body ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	view, err := s.coordinator.Ingest(r.Context(), ingest.Request{
		ContainerScope: containerID,
		MessageType:    body.MessageType,
		Content:        body.Content,
	})
	if err != nil {
		s.writeIngestError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, containerID string) {
	views, err := s.assembler.List(r.Context(), containerID)
	if err != nil {
		s.writeIngestError(w, r, err)
		return
	}
	if views == nil {
		views = []types.EdiView{}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) writeIngestError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := err.(*storage.ValidationError); ok {
		writeError(w, http.StatusBadRequest, ve.Error())
		return
	}
	s.notify.Errorf("request %s: ingest failed: %v", requestID(r.Context()), err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
