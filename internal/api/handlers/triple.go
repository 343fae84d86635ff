package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/noetic-labs/noesis/internal/service"
)

type TripleHandler struct {
	svc *service.TripleService
}

func NewTripleHandler(svc *service.TripleService) *TripleHandler {
	return &TripleHandler{svc: svc}
}

type appendTripleRequest struct {
	Subject    string  `json:"subject"`
	Predicate  string  `json:"predicate"`
	Object     string  `json:"object"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Context    string  `json:"context"`
}

func (h *TripleHandler) Append(w http.ResponseWriter, r *http.Request) {
	var req appendTripleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t := &domain.Triple{
		Subject:    req.Subject,
		Predicate:  req.Predicate,
		Object:     req.Object,
		Confidence: req.Confidence,
		Source:     req.Source,
		Context:    req.Context,
	}
	if err := h.svc.Append(r.Context(), t); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TripleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid triple id")
		return
	}

	t, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TripleHandler) Search(w http.ResponseWriter, r *http.Request) {
	var p domain.TriplePattern
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	triples, err := h.svc.Search(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"triples": triples, "count": len(triples)})
}

func (h *TripleHandler) Latest(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	predicate := r.URL.Query().Get("predicate")
	if subject == "" || predicate == "" {
		writeError(w, http.StatusBadRequest, "subject and predicate are required")
		return
	}

	t, err := h.svc.Latest(r.Context(), subject, predicate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
