package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/noetic-labs/noesis/internal/service"
)

type ValidationHandler struct {
	svc *service.CognitiveService
}

func NewValidationHandler(svc *service.CognitiveService) *ValidationHandler {
	return &ValidationHandler{svc: svc}
}

type codeRequest struct {
	Code string `json:"code"`
}

func (h *ValidationHandler) AllocateTokens(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token := h.svc.AllocateTokens(req.Code)
	writeJSON(w, http.StatusOK, token)
}

func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Validate(r.Context(), req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ValidationHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	patterns := h.svc.Patterns()
	writeJSON(w, http.StatusOK, map[string]any{"patterns": patterns, "count": len(patterns)})
}
