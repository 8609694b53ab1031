// Package handlers provides the HTTP trigger for risk monitoring runs.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/aristath/riskmonitor/internal/modules/monitor"
	"github.com/aristath/riskmonitor/internal/sink"
	"github.com/rs/zerolog"
)

// Runner executes one monitoring run
type Runner interface {
	Run(ctx context.Context) (*domain.RunReport, error)
}

// Handler handles risk run HTTP requests
type Handler struct {
	runner Runner
	log    zerolog.Logger
}

// NewHandler creates a new risk run handler
func NewHandler(runner Runner, log zerolog.Logger) *Handler {
	return &Handler{
		runner: runner,
		log:    log.With().Str("handler", "monitor").Logger(),
	}
}

type successResponse struct {
	Message         string `json:"message"`
	RecordsInserted int    `json:"records_inserted"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error interface{} `json:"error"`
}

// HandleRun handles GET|POST / by running the pipeline synchronously.
// A run always goes to completion, even if the client disconnects.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.Run(context.WithoutCancel(r.Context()))

	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, successResponse{
			Message:         "Success",
			RecordsInserted: report.Inserted,
		})

	case errors.Is(err, monitor.ErrNoValidData):
		h.writeJSON(w, http.StatusOK, messageResponse{Message: "No valid data to insert"})

	default:
		h.log.Error().Err(err).Msg("Risk run failed")

		var insertErr *sink.InsertError
		if errors.As(err, &insertErr) && len(insertErr.Rows) > 0 {
			h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: insertErr.Rows})
			return
		}
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
