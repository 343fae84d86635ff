package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrAgentNotFound     = errors.New("agent not found")
	ErrDesireNotFound    = errors.New("desire not found")
	ErrIntentionNotFound = errors.New("intention not found")
)

// Triple predicates used by the BDI audit trail.
const (
	PredicateAgentCreated    = "agent_created"
	PredicateBeliefAdded     = "belief_added"
	PredicateDesireAdded     = "desire_added"
	PredicateIntentionFormed = "intention_formed"
	PredicateIntentionStatus = "intention_status"
)

const beliefMatchMinConfidence = 0.5

// AgentRegistry is the in-memory agent map, authoritative for the process
// lifetime. Injected explicitly so tests can substitute fixtures.
type AgentRegistry struct {
	mu     sync.RWMutex
	agents map[uuid.UUID]*domain.Agent
}

func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{agents: make(map[uuid.UUID]*domain.Agent)}
}

func (r *AgentRegistry) put(a *domain.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.ID] = a
}

// AgentService tracks per-agent beliefs, desires and intentions. Every
// mutation updates the registry and enqueues an audit triple; the two are
// deliberately not transactional — an audit failure never rolls back the
// in-memory change.
type AgentService struct {
	registry  *AgentRegistry
	audit     *AuditLogger
	knowledge *KnowledgeService
	logger    *zap.Logger
}

func NewAgentService(registry *AgentRegistry, audit *AuditLogger, knowledge *KnowledgeService, logger *zap.Logger) *AgentService {
	return &AgentService{
		registry:  registry,
		audit:     audit,
		knowledge: knowledge,
		logger:    logger,
	}
}

func (s *AgentService) CreateAgent(ctx context.Context, name string, domains, capabilities []string) (*domain.Agent, error) {
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	a := &domain.Agent{
		ID:           uuid.New(),
		Name:         name,
		Domains:      domains,
		Capabilities: capabilities,
		Beliefs:      []domain.Belief{},
		Desires:      []domain.Desire{},
		Intentions:   []domain.Intention{},
		CreatedAt:    time.Now().UTC(),
	}
	s.registry.put(a)
	s.auditRecord(a.ID, PredicateAgentCreated, a, 1)
	return a, nil
}

func (s *AgentService) GetAgent(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	s.registry.mu.RLock()
	defer s.registry.mu.RUnlock()
	a, ok := s.registry.agents[id]
	if !ok {
		return nil, ErrAgentNotFound
	}
	cp := *a
	cp.Beliefs = append([]domain.Belief(nil), a.Beliefs...)
	cp.Desires = append([]domain.Desire(nil), a.Desires...)
	cp.Intentions = append([]domain.Intention(nil), a.Intentions...)
	return &cp, nil
}

func (s *AgentService) AddBelief(ctx context.Context, agentID uuid.UUID, content string, confidence float64, evidence []string) (*domain.Belief, error) {
	if content == "" {
		return nil, &domain.ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if err := domain.CheckConfidence(confidence); err != nil {
		return nil, err
	}

	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	a, ok := s.registry.agents[agentID]
	if !ok {
		return nil, ErrAgentNotFound
	}

	b := domain.Belief{
		ID:         uuid.New(),
		Content:    content,
		Confidence: confidence,
		Evidence:   evidence,
		CreatedAt:  time.Now().UTC(),
	}
	a.Beliefs = append(a.Beliefs, b)
	s.auditRecord(agentID, PredicateBeliefAdded, b, confidence)
	return &b, nil
}

func (s *AgentService) AddDesire(ctx context.Context, agentID uuid.UUID, goal string, priority int, utility float64) (*domain.Desire, error) {
	if goal == "" {
		return nil, &domain.ValidationError{Field: "goal", Reason: "must not be empty"}
	}

	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	a, ok := s.registry.agents[agentID]
	if !ok {
		return nil, ErrAgentNotFound
	}

	d := domain.Desire{
		ID:        uuid.New(),
		Goal:      goal,
		Priority:  priority,
		Utility:   utility,
		CreatedAt: time.Now().UTC(),
	}
	a.Desires = append(a.Desires, d)
	s.auditRecord(agentID, PredicateDesireAdded, d, 1)
	return &d, nil
}

// FormIntention commits the agent to a plan toward a known desire. The new
// intention starts pending with zero progress.
func (s *AgentService) FormIntention(ctx context.Context, agentID, desireID uuid.UUID, plan []string) (*domain.Intention, error) {
	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	a, ok := s.registry.agents[agentID]
	if !ok {
		return nil, ErrAgentNotFound
	}

	found := false
	for i := range a.Desires {
		if a.Desires[i].ID == desireID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrDesireNotFound
	}

	now := time.Now().UTC()
	in := domain.Intention{
		ID:        uuid.New(),
		DesireID:  desireID,
		Plan:      plan,
		Status:    domain.IntentionPending,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.Intentions = append(a.Intentions, in)
	s.auditRecord(agentID, PredicateIntentionFormed, in, 1)
	return &in, nil
}

// UpdateIntentionStatus applies one state-machine transition. Terminal
// intentions are frozen; completing requires progress 1.0.
func (s *AgentService) UpdateIntentionStatus(ctx context.Context, agentID, intentionID uuid.UUID, status domain.IntentionStatus, progress float64) (*domain.Intention, error) {
	if !domain.ValidIntentionStatus(string(status)) {
		return nil, &domain.ValidationError{Field: "status", Reason: "unknown status"}
	}
	if progress < 0 || progress > 1 {
		return nil, &domain.ValidationError{Field: "progress", Reason: "must be in [0,1]"}
	}
	if status == domain.IntentionCompleted && progress < 1 {
		return nil, &domain.ValidationError{Field: "progress", Reason: "must be 1.0 to complete"}
	}

	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	a, ok := s.registry.agents[agentID]
	if !ok {
		return nil, ErrAgentNotFound
	}

	var in *domain.Intention
	for i := range a.Intentions {
		if a.Intentions[i].ID == intentionID {
			in = &a.Intentions[i]
			break
		}
	}
	if in == nil {
		return nil, ErrIntentionNotFound
	}

	if !in.Status.CanTransition(status) {
		return nil, &domain.StateTransitionError{From: in.Status, To: status}
	}

	in.Status = status
	in.Progress = progress
	in.UpdatedAt = time.Now().UTC()
	s.auditRecord(agentID, PredicateIntentionStatus, in, 1)
	cp := *in
	return &cp, nil
}

// ValidateAgainstBeliefs checks a statement against beliefs held with
// confidence above 0.5; without a match the rule engine decides.
func (s *AgentService) ValidateAgainstBeliefs(ctx context.Context, agentID uuid.UUID, statement string) (*domain.BeliefValidation, error) {
	if statement == "" {
		return nil, &domain.ValidationError{Field: "statement", Reason: "must not be empty"}
	}

	a, err := s.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	var (
		sum     float64
		n       int
		reasons []string
	)
	for i := range a.Beliefs {
		b := &a.Beliefs[i]
		if b.Confidence <= beliefMatchMinConfidence {
			continue
		}
		if !beliefMatches(b.Content, statement) {
			continue
		}
		sum += b.Confidence
		n++
		reasons = append(reasons, fmt.Sprintf("supported by belief %q (confidence %.2f)", b.Content, b.Confidence))
	}

	if n > 0 {
		return &domain.BeliefValidation{
			IsValid:    true,
			Confidence: sum / float64(n),
			Reasons:    reasons,
		}, nil
	}

	rule, err := s.knowledge.ApplyRulesToStatement(ctx, statement)
	switch {
	case err == nil:
		return &domain.BeliefValidation{
			IsValid:      true,
			Confidence:   0.5 + 0.05*float64(rule.Priority),
			Reasons:      []string{fmt.Sprintf("rule %q applied: %s", rule.Name, rule.Consequence)},
			RuleFallback: true,
		}, nil
	case errors.Is(err, ErrInconclusive):
		return &domain.BeliefValidation{
			IsValid:      false,
			Confidence:   0,
			Reasons:      []string{"no supporting beliefs or rules"},
			RuleFallback: true,
		}, nil
	default:
		return nil, err
	}
}

func beliefMatches(content, statement string) bool {
	return containsFold(content, statement)
}

// auditRecord serializes the payload and enqueues the audit triple. Callers
// hold whatever lock they need; this never blocks.
func (s *AgentService) auditRecord(agentID uuid.UUID, predicate string, payload any, confidence float64) {
	if s.audit == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("audit payload marshal failed", zap.String("predicate", predicate), zap.Error(err))
		return
	}
	s.audit.Record(domain.Triple{
		Subject:    "agent:" + agentID.String(),
		Predicate:  predicate,
		Object:     string(raw),
		Confidence: confidence,
		Source:     "bdi",
	})
}
