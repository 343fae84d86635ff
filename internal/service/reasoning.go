package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"go.uber.org/zap"
)

// Triple predicates used by the reasoning trail.
const (
	PredicateReasoningRecorded   = "reasoning_recorded"
	PredicateReasoningTranslated = "reasoning_translated"
)

// Limitation strings returned (never thrown) when a caller might expect
// more than this engine deliberately does.
const (
	LimitationProofUnchecked     = "proof recorded but not machine-checked; this engine does not perform theorem proving"
	LimitationNotAnInterpreter   = "state transitions are caller-supplied; actions are recorded, not executed"
	LimitationEvaluationDeferred = "denotation recorded with a placeholder value; evaluation is delegated to the caller"
)

// ReasoningService records reasoning artifacts in three paradigms. It is a
// bookkeeping and audit engine, not a solver: validity checks are
// structural, transitions are taken at face value and denotations are
// stored, never evaluated.
type ReasoningService struct {
	log    domain.TripleLog
	llm    domain.LLMClient
	logger *zap.Logger
}

func NewReasoningService(log domain.TripleLog, logger *zap.Logger) *ReasoningService {
	return &ReasoningService{log: log, logger: logger}
}

// SetLLMClient enables proof-sketch generation for axiomatic records that
// arrive without one. The sketch is stored, never checked.
func (s *ReasoningService) SetLLMClient(c domain.LLMClient) {
	s.llm = c
}

// VerifyAxiomatically records a Hoare triple. Validity only requires the
// three core fields to be non-empty.
func (s *ReasoningService) VerifyAxiomatically(ctx context.Context, precondition, command, postcondition, proof string) (*domain.Reasoning, error) {
	ax := &domain.AxiomaticReasoning{
		Precondition:  precondition,
		Command:       command,
		Postcondition: postcondition,
		Proof:         proof,
		IsValid:       precondition != "" && command != "" && postcondition != "",
	}

	if ax.IsValid && ax.Proof == "" && s.llm != nil {
		sketch, err := s.llm.GenerateProof(ctx, precondition, command, postcondition)
		if err != nil {
			s.logger.Warn("proof generation failed, recording without proof", zap.Error(err))
		} else {
			ax.Proof = sketch
		}
	}

	r := &domain.Reasoning{
		ID:         uuid.New(),
		Paradigm:   domain.ParadigmAxiomatic,
		Axiomatic:  ax,
		Limitation: LimitationProofUnchecked,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.persist(ctx, r, PredicateReasoningRecorded); err != nil {
		return nil, err
	}
	return r, nil
}

// ExecuteOperationally walks the steps in declared order; each step's
// caller-declared NextState becomes the current state. No action text is
// interpreted.
func (s *ReasoningService) ExecuteOperationally(ctx context.Context, initialState map[string]string, steps []domain.OperationalStep) (*domain.Reasoning, error) {
	if initialState == nil {
		initialState = map[string]string{}
	}
	final := initialState
	for i := range steps {
		if steps[i].NextState != nil {
			final = steps[i].NextState
		}
	}

	r := &domain.Reasoning{
		ID:       uuid.New(),
		Paradigm: domain.ParadigmOperational,
		Operational: &domain.OperationalReasoning{
			InitialState: initialState,
			Steps:        steps,
			FinalState:   final,
		},
		Limitation: LimitationNotAnInterpreter,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.persist(ctx, r, PredicateReasoningRecorded); err != nil {
		return nil, err
	}
	return r, nil
}

// EvaluateDenotationally records an (expression, domain, denotation) triple
// and tags the result with a placeholder value.
func (s *ReasoningService) EvaluateDenotationally(ctx context.Context, expression, semDomain, denotation string, isComposable bool) (*domain.Reasoning, string, error) {
	if expression == "" {
		return nil, "", &domain.ValidationError{Field: "expression", Reason: "must not be empty"}
	}
	if semDomain == "" {
		return nil, "", &domain.ValidationError{Field: "domain", Reason: "must not be empty"}
	}

	r := &domain.Reasoning{
		ID:       uuid.New(),
		Paradigm: domain.ParadigmDenotational,
		Denotational: &domain.DenotationalReasoning{
			Expression:   expression,
			Domain:       semDomain,
			Denotation:   denotation,
			IsComposable: isComposable,
		},
		Limitation: LimitationEvaluationDeferred,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.persist(ctx, r, PredicateReasoningRecorded); err != nil {
		return nil, "", err
	}
	value := fmt.Sprintf("%s:⟦%s⟧", semDomain, expression)
	return r, value, nil
}

// persist appends the reasoning artifact to the log for later audit and
// translation.
func (s *ReasoningService) persist(ctx context.Context, r *domain.Reasoning, predicate string) error {
	if err := r.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reasoning: %w", err)
	}
	return s.log.Append(ctx, &domain.Triple{
		Subject:    "reasoning:" + r.ID.String(),
		Predicate:  predicate,
		Object:     string(raw),
		Confidence: 1,
		Source:     string(r.Paradigm),
	})
}
