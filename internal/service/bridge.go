package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"go.uber.org/zap"
)

const stateDomain = "State→State"

// Bridge translates reasoning artifacts between the three paradigms. The
// contract: a full round trip A→O→D→A preserves the set of variable
// assignments named in the original pre- and postconditions, even though
// the textual rendering may differ.
type Bridge struct {
	reasoning *ReasoningService
	logger    *zap.Logger
}

func NewBridge(reasoning *ReasoningService, logger *zap.Logger) *Bridge {
	return &Bridge{reasoning: reasoning, logger: logger}
}

// RenderState serializes a state map deterministically: sorted keys joined
// as `k=v && k=v`. The empty state renders as "true" so conditions stay
// non-empty. ParseAssignments inverts this rendering.
func RenderState(state map[string]string) string {
	if len(state) == 0 {
		return "true"
	}
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+state[k])
	}
	return strings.Join(parts, " && ")
}

// Translate converts r into the target paradigm and records the translation.
func (b *Bridge) Translate(ctx context.Context, r *domain.Reasoning, target domain.Paradigm) (*domain.Reasoning, error) {
	if r == nil {
		return nil, &domain.ValidationError{Field: "reasoning", Reason: "must not be nil"}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if !domain.ValidParadigm(string(target)) {
		return nil, &domain.ValidationError{Field: "target", Reason: "unknown paradigm"}
	}
	if r.Paradigm == target {
		cp := *r
		return &cp, nil
	}

	var out *domain.Reasoning
	switch r.Paradigm {
	case domain.ParadigmAxiomatic:
		out = b.fromAxiomatic(r.Axiomatic, target)
	case domain.ParadigmOperational:
		out = b.fromOperational(r.Operational, target)
	case domain.ParadigmDenotational:
		out = b.fromDenotational(r.Denotational, target)
	default:
		return nil, &domain.ValidationError{Field: "paradigm", Reason: "unknown paradigm"}
	}

	if out == nil {
		return nil, &domain.ValidationError{Field: "target", Reason: "unsupported translation"}
	}

	out.ID = uuid.New()
	out.CreatedAt = time.Now().UTC()
	if err := b.reasoning.persist(ctx, out, PredicateReasoningTranslated); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Bridge) fromAxiomatic(ax *domain.AxiomaticReasoning, target domain.Paradigm) *domain.Reasoning {
	initial := ParseAssignments(ax.Precondition)
	final := ParseAssignments(ax.Postcondition)

	switch target {
	case domain.ParadigmOperational:
		return &domain.Reasoning{
			Paradigm: domain.ParadigmOperational,
			Operational: &domain.OperationalReasoning{
				InitialState: initial,
				Steps: []domain.OperationalStep{
					{Action: ax.Command, NextState: final},
				},
				FinalState: final,
			},
			Limitation: LimitationNotAnInterpreter,
		}
	case domain.ParadigmDenotational:
		return &domain.Reasoning{
			Paradigm: domain.ParadigmDenotational,
			Denotational: &domain.DenotationalReasoning{
				Expression:   ax.Command,
				Domain:       stateDomain,
				Denotation:   fmt.Sprintf("%s ↦ %s", RenderState(initial), RenderState(final)),
				InitialState: initial,
				FinalState:   final,
			},
			Limitation: LimitationEvaluationDeferred,
		}
	}
	return nil
}

func (b *Bridge) fromOperational(op *domain.OperationalReasoning, target domain.Paradigm) *domain.Reasoning {
	expr := actionsExpression(op.Steps)

	switch target {
	case domain.ParadigmAxiomatic:
		return &domain.Reasoning{
			Paradigm: domain.ParadigmAxiomatic,
			Axiomatic: &domain.AxiomaticReasoning{
				Precondition:  RenderState(op.InitialState),
				Command:       expr,
				Postcondition: RenderState(op.FinalState),
				IsValid:       true,
			},
			Limitation: LimitationProofUnchecked,
		}
	case domain.ParadigmDenotational:
		return &domain.Reasoning{
			Paradigm: domain.ParadigmDenotational,
			Denotational: &domain.DenotationalReasoning{
				Expression:   expr,
				Domain:       stateDomain,
				Denotation:   fmt.Sprintf("%s ↦ %s", RenderState(op.InitialState), RenderState(op.FinalState)),
				InitialState: op.InitialState,
				FinalState:   op.FinalState,
			},
			Limitation: LimitationEvaluationDeferred,
		}
	}
	return nil
}

func (b *Bridge) fromDenotational(dn *domain.DenotationalReasoning, target domain.Paradigm) *domain.Reasoning {
	initial := dn.InitialState
	final := dn.FinalState
	if initial == nil {
		initial = map[string]string{}
	}
	if final == nil {
		final = map[string]string{}
	}

	switch target {
	case domain.ParadigmAxiomatic:
		return &domain.Reasoning{
			Paradigm: domain.ParadigmAxiomatic,
			Axiomatic: &domain.AxiomaticReasoning{
				Precondition:  RenderState(initial),
				Command:       dn.Expression,
				Postcondition: RenderState(final),
				IsValid:       dn.Expression != "",
			},
			Limitation: LimitationProofUnchecked,
		}
	case domain.ParadigmOperational:
		return &domain.Reasoning{
			Paradigm: domain.ParadigmOperational,
			Operational: &domain.OperationalReasoning{
				InitialState: initial,
				Steps: []domain.OperationalStep{
					{Action: dn.Expression, NextState: final},
				},
				FinalState: final,
			},
			Limitation: LimitationNotAnInterpreter,
		}
	}
	return nil
}

func actionsExpression(steps []domain.OperationalStep) string {
	if len(steps) == 0 {
		return "skip"
	}
	actions := make([]string, 0, len(steps))
	for i := range steps {
		if steps[i].Action != "" {
			actions = append(actions, steps[i].Action)
		}
	}
	if len(actions) == 0 {
		return "skip"
	}
	return strings.Join(actions, "; ")
}
