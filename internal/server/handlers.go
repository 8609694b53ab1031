package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/riskmonitor/internal/sink"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := s.system.Usage()

	response := map[string]interface{}{
		"status":         "healthy",
		"version":        "1.0.0",
		"service":        "riskmonitor",
		"sink":           s.container.Sink.Name(),
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"cpu_percent":    cpuPercent,
		"ram_percent":    ramPercent,
	}

	if checker, ok := s.container.Sink.(sink.HealthChecker); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		response["sink_status"] = "ok"
		if err := checker.Ping(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Sink health check failed")
			response["status"] = "degraded"
			response["sink_status"] = err.Error()
		}
	}

	s.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
