package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/noetic-labs/noesis/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service and domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		ve *domain.ValidationError
		se *domain.StateTransitionError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &se):
		writeError(w, http.StatusConflict, se.Error())
	case errors.Is(err, service.ErrAgentNotFound),
		errors.Is(err, service.ErrDesireNotFound),
		errors.Is(err, service.ErrIntentionNotFound),
		errors.Is(err, service.ErrTripleNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
