package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/benmeehan/status-monitor/internal/constants"
	"github.com/benmeehan/status-monitor/internal/ingest"
	"github.com/benmeehan/status-monitor/internal/models"
)

// handlePing records a heartbeat.
// POST /api/ping
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxPingBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.logger.Warn().Int64("limit", tooLarge.Limit).Msg("Ping body too large")
		}
		s.writeError(w, ingest.MsgInvalidBody, http.StatusBadRequest)
		return
	}

	req, _, err := s.processor.Process(body)
	if err != nil {
		status := ingest.StatusCode(err)
		s.logger.Warn().
			Err(err).
			Str("system_id", req.SystemID).
			Str("remote_addr", r.RemoteAddr).
			Int("status", status).
			Msg("Ping rejected")
		s.writeError(w, ingest.PublicMessage(err), status)
		return
	}

	s.logger.Debug().Str("system_id", req.SystemID).Msg("Ping received")

	s.writeJSON(w, http.StatusOK, models.PingResponse{
		Success:    true,
		Message:    "Ping received",
		NextPingIn: s.registry.Timeout().Milliseconds(),
	})
}

// handleStatus lists the online systems.
// GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	now := s.clock()
	snapshot := s.registry.Snapshot(now)

	systems := make([]models.SystemStatus, 0, len(snapshot))
	for _, sys := range snapshot {
		systems = append(systems, models.SystemStatus{
			ID:       sys.ID,
			Name:     sys.Name,
			Type:     sys.Kind,
			LastPing: sys.LastPing.UnixMilli(),
			Uptime:   sys.Uptime.Milliseconds(),
		})
	}

	s.writeJSON(w, http.StatusOK, models.StatusResponse{
		Systems:     systems,
		LastUpdate:  now.UnixMilli(),
		TotalOnline: len(systems),
	})
}

// handleHealth reports process liveness.
// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:        constants.HealthStatusHealthy,
		Uptime:        s.clock().Sub(s.startTime).Seconds(),
		OnlineSystems: s.registry.Count(),
	})
}
