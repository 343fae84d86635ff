package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/noetic-labs/noesis/internal/service"
)

type AgentHandler struct {
	svc *service.AgentService
}

func NewAgentHandler(svc *service.AgentService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

func agentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return uuid.Nil, false
	}
	return id, true
}

type createAgentRequest struct {
	Name         string   `json:"name"`
	Domains      []string `json:"domains"`
	Capabilities []string `json:"capabilities"`
}

func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	agent, err := h.svc.CreateAgent(r.Context(), req.Name, req.Domains, req.Capabilities)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, agent)
}

func (h *AgentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	agent, err := h.svc.GetAgent(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

type addBeliefRequest struct {
	Content    string   `json:"content"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

func (h *AgentHandler) AddBelief(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	var req addBeliefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	belief, err := h.svc.AddBelief(r.Context(), id, req.Content, req.Confidence, req.Evidence)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, belief)
}

type addDesireRequest struct {
	Goal     string  `json:"goal"`
	Priority int     `json:"priority"`
	Utility  float64 `json:"utility"`
}

func (h *AgentHandler) AddDesire(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	var req addDesireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	desire, err := h.svc.AddDesire(r.Context(), id, req.Goal, req.Priority, req.Utility)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, desire)
}

type formIntentionRequest struct {
	DesireID uuid.UUID `json:"desire_id"`
	Plan     []string  `json:"plan"`
}

func (h *AgentHandler) FormIntention(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	var req formIntentionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	intention, err := h.svc.FormIntention(r.Context(), id, req.DesireID, req.Plan)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, intention)
}

type updateIntentionRequest struct {
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
}

func (h *AgentHandler) UpdateIntention(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	intentionID, err := uuid.Parse(chi.URLParam(r, "intentionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid intention id")
		return
	}

	var req updateIntentionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	intention, err := h.svc.UpdateIntentionStatus(r.Context(), id, intentionID, domain.IntentionStatus(req.Status), req.Progress)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intention)
}

type validateBeliefsRequest struct {
	Statement string `json:"statement"`
}

func (h *AgentHandler) ValidateAgainstBeliefs(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	var req validateBeliefsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.ValidateAgainstBeliefs(r.Context(), id, req.Statement)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
