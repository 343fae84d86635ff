package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/noetic-labs/noesis/internal/service"
)

type ReasoningHandler struct {
	svc    *service.ReasoningService
	bridge *service.Bridge
}

func NewReasoningHandler(svc *service.ReasoningService, bridge *service.Bridge) *ReasoningHandler {
	return &ReasoningHandler{svc: svc, bridge: bridge}
}

type axiomaticRequest struct {
	Precondition  string `json:"precondition"`
	Command       string `json:"command"`
	Postcondition string `json:"postcondition"`
	Proof         string `json:"proof"`
}

func (h *ReasoningHandler) Axiomatic(w http.ResponseWriter, r *http.Request) {
	var req axiomaticRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.VerifyAxiomatically(r.Context(), req.Precondition, req.Command, req.Postcondition, req.Proof)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type operationalRequest struct {
	InitialState map[string]string        `json:"initial_state"`
	Steps        []domain.OperationalStep `json:"steps"`
}

func (h *ReasoningHandler) Operational(w http.ResponseWriter, r *http.Request) {
	var req operationalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.ExecuteOperationally(r.Context(), req.InitialState, req.Steps)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type denotationalRequest struct {
	Expression   string `json:"expression"`
	Domain       string `json:"domain"`
	Denotation   string `json:"denotation"`
	IsComposable bool   `json:"is_composable"`
}

func (h *ReasoningHandler) Denotational(w http.ResponseWriter, r *http.Request) {
	var req denotationalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, value, err := h.svc.EvaluateDenotationally(r.Context(), req.Expression, req.Domain, req.Denotation, req.IsComposable)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"reasoning": result, "value": value})
}

type translateRequest struct {
	Reasoning *domain.Reasoning `json:"reasoning"`
	Target    string            `json:"target"`
}

func (h *ReasoningHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.bridge.Translate(r.Context(), req.Reasoning, domain.Paradigm(req.Target))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
