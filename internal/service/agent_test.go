package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/noetic-labs/noesis/internal/store"
	"go.uber.org/zap"
)

func newAgentTest() *AgentService {
	knowledge := NewKnowledgeService(store.NewMemoryLog(), zap.NewNop())
	return NewAgentService(NewAgentRegistry(), nil, knowledge, zap.NewNop())
}

func TestAgentService_CreateAndGet(t *testing.T) {
	svc := newAgentTest()
	ctx := context.Background()

	a, err := svc.CreateAgent(ctx, "Planner", []string{"deploy"}, []string{"plan"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if a.ID == uuid.Nil {
		t.Fatal("expected agent ID to be set")
	}

	got, err := svc.GetAgent(ctx, a.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Name != "Planner" {
		t.Fatalf("expected name Planner, got %q", got.Name)
	}

	// The returned copy must not alias registry state.
	got.Beliefs = append(got.Beliefs, domain.Belief{Content: "tampered"})
	again, _ := svc.GetAgent(ctx, a.ID)
	if len(again.Beliefs) != 0 {
		t.Fatal("expected GetAgent to return an independent copy")
	}
}

func TestAgentService_CreateAgent_EmptyName(t *testing.T) {
	svc := newAgentTest()

	var ve *domain.ValidationError
	if _, err := svc.CreateAgent(context.Background(), "", nil, nil); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAgentService_GetAgent_NotFound(t *testing.T) {
	svc := newAgentTest()

	if _, err := svc.GetAgent(context.Background(), uuid.New()); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestAgentService_AddBelief_Validation(t *testing.T) {
	svc := newAgentTest()
	ctx := context.Background()
	a, _ := svc.CreateAgent(ctx, "Planner", nil, nil)

	var ve *domain.ValidationError
	if _, err := svc.AddBelief(ctx, a.ID, "", 0.5, nil); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty content, got %v", err)
	}
	if _, err := svc.AddBelief(ctx, a.ID, "x", 1.2, nil); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for confidence out of range, got %v", err)
	}
	if _, err := svc.AddBelief(ctx, uuid.New(), "x", 0.5, nil); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestAgentService_FormIntention_StartsPending(t *testing.T) {
	svc := newAgentTest()
	ctx := context.Background()

	a, _ := svc.CreateAgent(ctx, "Planner", nil, nil)
	d, _ := svc.AddDesire(ctx, a.ID, "ship the release", 8, 0.9)

	in, err := svc.FormIntention(ctx, a.ID, d.ID, []string{"freeze", "test", "tag"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if in.Status != domain.IntentionPending {
		t.Fatalf("expected pending, got %q", in.Status)
	}
	if in.Progress != 0 {
		t.Fatalf("expected zero progress, got %v", in.Progress)
	}
}

func TestAgentService_FormIntention_UnknownDesire(t *testing.T) {
	svc := newAgentTest()
	ctx := context.Background()
	a, _ := svc.CreateAgent(ctx, "Planner", nil, nil)

	if _, err := svc.FormIntention(ctx, a.ID, uuid.New(), nil); !errors.Is(err, ErrDesireNotFound) {
		t.Fatalf("expected ErrDesireNotFound, got %v", err)
	}
}

func TestAgentService_IntentionLifecycle(t *testing.T) {
	svc := newAgentTest()
	ctx := context.Background()

	a, _ := svc.CreateAgent(ctx, "Planner", nil, nil)
	d, _ := svc.AddDesire(ctx, a.ID, "ship", 5, 0.5)
	in, _ := svc.FormIntention(ctx, a.ID, d.ID, []string{"do it"})

	// pending -> completed is not a legal move.
	_, err := svc.UpdateIntentionStatus(ctx, a.ID, in.ID, domain.IntentionCompleted, 1)
	var ste *domain.StateTransitionError
	if !errors.As(err, &ste) {
		t.Fatalf("expected StateTransitionError, got %v", err)
	}

	// pending -> active.
	upd, err := svc.UpdateIntentionStatus(ctx, a.ID, in.ID, domain.IntentionActive, 0.4)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if upd.Status != domain.IntentionActive || upd.Progress != 0.4 {
		t.Fatalf("unexpected intention state: %+v", upd)
	}

	// Completing with partial progress is a validation failure, not a
	// transition failure.
	_, err = svc.UpdateIntentionStatus(ctx, a.ID, in.ID, domain.IntentionCompleted, 0.6)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// active -> completed with full progress.
	upd, err = svc.UpdateIntentionStatus(ctx, a.ID, in.ID, domain.IntentionCompleted, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !upd.Status.Terminal() {
		t.Fatal("expected completed to be terminal")
	}

	// Terminal intentions are frozen.
	_, err = svc.UpdateIntentionStatus(ctx, a.ID, in.ID, domain.IntentionActive, 0.5)
	if !errors.As(err, &ste) {
		t.Fatalf("expected StateTransitionError on a terminal intention, got %v", err)
	}
}

func TestAgentService_UpdateIntentionStatus_Validation(t *testing.T) {
	svc := newAgentTest()
	ctx := context.Background()

	a, _ := svc.CreateAgent(ctx, "Planner", nil, nil)
	d, _ := svc.AddDesire(ctx, a.ID, "ship", 5, 0.5)
	in, _ := svc.FormIntention(ctx, a.ID, d.ID, nil)

	var ve *domain.ValidationError
	if _, err := svc.UpdateIntentionStatus(ctx, a.ID, in.ID, "paused", 0); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for unknown status, got %v", err)
	}
	if _, err := svc.UpdateIntentionStatus(ctx, a.ID, in.ID, domain.IntentionActive, 1.3); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for progress out of range, got %v", err)
	}
	if _, err := svc.UpdateIntentionStatus(ctx, a.ID, uuid.New(), domain.IntentionActive, 0); !errors.Is(err, ErrIntentionNotFound) {
		t.Fatalf("expected ErrIntentionNotFound, got %v", err)
	}
}

func TestAgentService_ValidateAgainstBeliefs(t *testing.T) {
	svc := newAgentTest()
	ctx := context.Background()

	a, _ := svc.CreateAgent(ctx, "Planner", nil, nil)
	_, _ = svc.AddBelief(ctx, a.ID, "production deploys require a review", 0.9, nil)
	_, _ = svc.AddBelief(ctx, a.ID, "production deploys are risky", 0.4, nil) // below the match floor

	result, err := svc.ValidateAgainstBeliefs(ctx, a.ID, "production deploys require a review")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.IsValid || result.RuleFallback {
		t.Fatalf("expected a direct belief match, got %+v", result)
	}
	if result.Confidence != 0.9 {
		t.Fatalf("expected the matching belief's confidence, got %.2f", result.Confidence)
	}
}

func TestAgentService_ValidateAgainstBeliefs_RuleFallback(t *testing.T) {
	knowledge := NewKnowledgeService(store.NewMemoryLog(), zap.NewNop())
	svc := NewAgentService(NewAgentRegistry(), nil, knowledge, zap.NewNop())
	ctx := context.Background()

	_, _ = knowledge.AddRule(ctx, &domain.Rule{
		Name: "prod-gate", Condition: "env=prod", Consequence: "require review",
		Priority: 6, Domain: "deploy",
	})
	a, _ := svc.CreateAgent(ctx, "Planner", nil, nil)

	result, err := svc.ValidateAgainstBeliefs(ctx, a.ID, "deploying with env=prod")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.RuleFallback || !result.IsValid {
		t.Fatalf("expected the rule fallback verdict, got %+v", result)
	}

	// Nothing matches at all: invalid, still flagged as fallback.
	result, err = svc.ValidateAgainstBeliefs(ctx, a.ID, "entirely unknown claim")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.IsValid || !result.RuleFallback {
		t.Fatalf("expected an inconclusive fallback, got %+v", result)
	}
}
