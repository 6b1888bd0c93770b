package api

import (
	"encoding/json"
	"net/http"

	"github.com/benmeehan/status-monitor/internal/models"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// The status line is already out; an encoding failure can only truncate the body.
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug().Err(err).Int("status", status).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, models.ErrorResponse{Error: message})
}
