package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/aaronlmathis/infrascope/internal/metrics"
	"github.com/aaronlmathis/infrascope/internal/version"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, version.Get())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// statusForError maps the aggregation error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch metrics.KindOf(err) {
	case metrics.ErrKindNodeNotFound:
		return http.StatusNotFound
	case metrics.ErrKindConfiguration, metrics.ErrKindModelRequirement:
		return http.StatusBadRequest
	case metrics.ErrKindBackendUnavailable, metrics.ErrKindMalformedResult:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
