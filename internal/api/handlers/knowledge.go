package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/noetic-labs/noesis/internal/service"
)

type KnowledgeHandler struct {
	svc *service.KnowledgeService
}

func NewKnowledgeHandler(svc *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type addFactRequest struct {
	Statement  string   `json:"statement"`
	Evidence   []string `json:"evidence"`
	Confidence float64  `json:"confidence"`
	Source     string   `json:"source"`
	References []string `json:"references"`
}

func (h *KnowledgeHandler) AddFact(w http.ResponseWriter, r *http.Request) {
	var req addFactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f := &domain.Fact{
		Statement:  req.Statement,
		Evidence:   req.Evidence,
		Confidence: req.Confidence,
		Source:     req.Source,
		References: req.References,
	}
	id, err := h.svc.AddFact(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "fact": f})
}

func (h *KnowledgeHandler) AddRule(w http.ResponseWriter, r *http.Request) {
	var rule domain.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.svc.AddRule(r.Context(), &rule)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "rule": rule})
}

func (h *KnowledgeHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules := h.svc.Rules()
	writeJSON(w, http.StatusOK, map[string]any{"rules": rules, "count": len(rules)})
}

type validateFactRequest struct {
	Statement string `json:"statement"`
}

func (h *KnowledgeHandler) ValidateFact(w http.ResponseWriter, r *http.Request) {
	var req validateFactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.ValidateFact(r.Context(), req.Statement)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type applyRulesRequest struct {
	Context map[string]string `json:"context"`
}

func (h *KnowledgeHandler) ApplyRules(w http.ResponseWriter, r *http.Request) {
	var req applyRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := h.svc.ApplyRules(r.Context(), req.Context)
	if err != nil {
		if errors.Is(err, service.ErrInconclusive) {
			writeJSON(w, http.StatusOK, map[string]any{"inconclusive": true})
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"inconclusive": false,
		"consequence":  rule.Consequence,
		"rule":         rule,
	})
}
