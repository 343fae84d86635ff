package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/noetic-labs/noesis/internal/store"
	"go.uber.org/zap"
)

func newKnowledgeTest() (*KnowledgeService, *store.MemoryLog) {
	log := store.NewMemoryLog()
	return NewKnowledgeService(log, zap.NewNop()), log
}

func TestKnowledgeService_AddFact(t *testing.T) {
	svc, log := newKnowledgeTest()
	ctx := context.Background()

	id, err := svc.AddFact(ctx, &domain.Fact{
		Statement:  "the sky is blue",
		Evidence:   []string{"observation"},
		Confidence: 0.9,
		Source:     "test",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("expected fact ID to be set")
	}

	triples, _ := log.Search(ctx, domain.TriplePattern{Predicate: PredicateFactStates})
	if len(triples) != 1 {
		t.Fatalf("expected 1 fact triple, got %d", len(triples))
	}
	if triples[0].Object != "the sky is blue" {
		t.Fatalf("expected statement as object, got %q", triples[0].Object)
	}
}

func TestKnowledgeService_AddFact_Invalid(t *testing.T) {
	svc, _ := newKnowledgeTest()
	ctx := context.Background()

	var ve *domain.ValidationError
	if _, err := svc.AddFact(ctx, &domain.Fact{Statement: "", Confidence: 0.5}); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty statement, got %v", err)
	}
	if _, err := svc.AddFact(ctx, &domain.Fact{Statement: "x", Confidence: 1.5}); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for out-of-range confidence, got %v", err)
	}
}

func TestKnowledgeService_AddRule_Invalid(t *testing.T) {
	svc, _ := newKnowledgeTest()
	ctx := context.Background()

	var ve *domain.ValidationError
	if _, err := svc.AddRule(ctx, &domain.Rule{Name: "r", Condition: "x=1", Consequence: "y", Domain: "d", Priority: 11}); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for priority > 10, got %v", err)
	}
	if _, err := svc.AddRule(ctx, &domain.Rule{Name: "r", Condition: "", Consequence: "y", Domain: "d"}); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty condition, got %v", err)
	}
}

func TestKnowledgeService_ApplyRules_PriorityWins(t *testing.T) {
	svc, _ := newKnowledgeTest()
	ctx := context.Background()

	_, _ = svc.AddRule(ctx, &domain.Rule{Name: "low", Condition: "env=prod", Consequence: "ask", Priority: 3, Domain: "deploy"})
	_, _ = svc.AddRule(ctx, &domain.Rule{Name: "high", Condition: "env=prod", Consequence: "block", Priority: 9, Domain: "deploy"})

	rule, err := svc.ApplyRules(ctx, map[string]string{"env": "prod"})
	if err != nil {
		t.Fatalf("expected a rule, got %v", err)
	}
	if rule.Name != "high" {
		t.Fatalf("expected the priority-9 rule, got %q", rule.Name)
	}
}

func TestKnowledgeService_ApplyRules_TieKeepsEarliest(t *testing.T) {
	svc, _ := newKnowledgeTest()
	ctx := context.Background()

	_, _ = svc.AddRule(ctx, &domain.Rule{Name: "first", Condition: "x=1", Consequence: "a", Priority: 5, Domain: "d"})
	_, _ = svc.AddRule(ctx, &domain.Rule{Name: "second", Condition: "x=1", Consequence: "b", Priority: 5, Domain: "d"})

	rule, err := svc.ApplyRules(ctx, map[string]string{"x": "1"})
	if err != nil {
		t.Fatalf("expected a rule, got %v", err)
	}
	if rule.Name != "first" {
		t.Fatalf("expected the earlier rule on a priority tie, got %q", rule.Name)
	}
}

func TestKnowledgeService_ApplyRules_Inconclusive(t *testing.T) {
	svc, _ := newKnowledgeTest()

	_, err := svc.ApplyRules(context.Background(), map[string]string{"env": "prod"})
	if !errors.Is(err, ErrInconclusive) {
		t.Fatalf("expected ErrInconclusive, got %v", err)
	}
}

func TestKnowledgeService_Restore(t *testing.T) {
	svc, log := newKnowledgeTest()
	ctx := context.Background()

	_, _ = svc.AddRule(ctx, &domain.Rule{Name: "a", Condition: "x=1", Consequence: "ca", Priority: 1, Domain: "d"})
	_, _ = svc.AddRule(ctx, &domain.Rule{Name: "b", Condition: "x=1", Consequence: "cb", Priority: 2, Domain: "d"})

	fresh := NewKnowledgeService(log, zap.NewNop())
	if err := fresh.Restore(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rules := fresh.Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 restored rules, got %d", len(rules))
	}
	if rules[0].Name != "a" || rules[1].Name != "b" {
		t.Fatalf("expected creation order preserved, got %q, %q", rules[0].Name, rules[1].Name)
	}
}

func TestKnowledgeService_ValidateFact_DecayWeighting(t *testing.T) {
	svc, log := newKnowledgeTest()
	ctx := context.Background()

	now := time.Now().UTC()
	// Stale low-confidence record and a fresh high-confidence one for the
	// same statement.
	_ = log.Append(ctx, &domain.Triple{
		Subject: "fact:" + uuid.NewString(), Predicate: PredicateFactStates,
		Object: "the sky is blue", Confidence: 0.2, CreatedAt: now.Add(-100 * time.Hour),
	})
	_ = log.Append(ctx, &domain.Triple{
		Subject: "fact:" + uuid.NewString(), Predicate: PredicateFactStates,
		Object: "the sky is blue", Confidence: 0.9, CreatedAt: now,
	})

	result, err := svc.ValidateFact(ctx, "the sky is blue")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.IsValid {
		t.Fatal("expected the statement to validate")
	}
	// An unweighted mean would be 0.55; decay must pull toward the fresh 0.9.
	if result.Confidence <= 0.55 {
		t.Fatalf("expected recency weighting above the plain mean, got %.3f", result.Confidence)
	}
	if len(result.Reasons) != 2 {
		t.Fatalf("expected both matches reported, got %v", result.Reasons)
	}
}

func TestKnowledgeService_ValidateFact_RuleFallback(t *testing.T) {
	svc, _ := newKnowledgeTest()
	ctx := context.Background()

	_, _ = svc.AddRule(ctx, &domain.Rule{
		Name: "prod-deploys-need-review", Condition: "env=prod",
		Consequence: "require review", Priority: 4, Domain: "deploy",
	})

	result, err := svc.ValidateFact(ctx, "deploy allowed when env=prod")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.IsValid {
		t.Fatal("expected the rule fallback to validate")
	}
	want := 0.5 + 0.05*4
	if result.Confidence != want {
		t.Fatalf("expected fallback confidence %.2f, got %.2f", want, result.Confidence)
	}
}

func TestKnowledgeService_ValidateFact_Inconclusive(t *testing.T) {
	svc, _ := newKnowledgeTest()

	result, err := svc.ValidateFact(context.Background(), "nothing known about this")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.IsValid {
		t.Fatal("expected an unknown statement to be invalid")
	}
	if result.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %.2f", result.Confidence)
	}
}
