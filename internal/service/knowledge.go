package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"go.uber.org/zap"
)

// Triple predicates used by the knowledge base.
const (
	PredicateFactStates  = "states"
	PredicateRuleDefines = "defines"
)

const (
	// DefaultFactDecayLambda is the per-hour exponential recency decay
	// applied when aggregating matched fact confidences.
	DefaultFactDecayLambda = 0.01
	factValidThreshold     = 0.5
	suggestionLimit        = 3
)

var ErrInconclusive = errors.New("no rule matched the context")

// KnowledgeService stores facts and rules on the triple log and answers
// validation queries against them. The rule registry is an in-process slice
// rebuilt from the log on startup; the log stays the durable trail.
type KnowledgeService struct {
	log    domain.TripleLog
	embed  domain.EmbeddingClient
	logger *zap.Logger

	mu    sync.RWMutex
	rules []domain.Rule

	DecayLambda float64
}

func NewKnowledgeService(log domain.TripleLog, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{
		log:         log,
		logger:      logger,
		DecayLambda: DefaultFactDecayLambda,
	}
}

// SetEmbeddingClient enables similarity suggestions on ValidateFact.
func (s *KnowledgeService) SetEmbeddingClient(c domain.EmbeddingClient) {
	s.embed = c
}

type factContext struct {
	Evidence   []string `json:"evidence,omitempty"`
	References []string `json:"references,omitempty"`
}

// AddFact validates the confidence bound and appends a fact triple linking
// the statement to its evidence.
func (s *KnowledgeService) AddFact(ctx context.Context, f *domain.Fact) (uuid.UUID, error) {
	if f.Statement == "" {
		return uuid.Nil, &domain.ValidationError{Field: "statement", Reason: "must not be empty"}
	}
	if err := domain.CheckConfidence(f.Confidence); err != nil {
		return uuid.Nil, err
	}

	fc, err := json.Marshal(factContext{Evidence: f.Evidence, References: f.References})
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal fact context: %w", err)
	}

	f.ID = uuid.New()
	t := domain.Triple{
		Subject:    "fact:" + f.ID.String(),
		Predicate:  PredicateFactStates,
		Object:     f.Statement,
		Confidence: f.Confidence,
		Source:     f.Source,
		Context:    string(fc),
	}
	if s.embed != nil {
		emb, err := s.embed.Embed(ctx, f.Statement)
		if err != nil {
			s.logger.Warn("fact embedding failed, storing without", zap.Error(err))
		} else {
			t.Embedding = emb
		}
	}

	if err := s.log.Append(ctx, &t); err != nil {
		return uuid.Nil, err
	}
	f.CreatedAt = t.CreatedAt
	return f.ID, nil
}

// AddRule validates the rule, appends its durable triple and registers it in
// the in-process registry. Duplicate (condition, consequence) pairs are
// allowed; the creation-order tie-break keeps them deterministic.
func (s *KnowledgeService) AddRule(ctx context.Context, r *domain.Rule) (uuid.UUID, error) {
	if err := r.Validate(); err != nil {
		return uuid.Nil, err
	}

	r.ID = uuid.New()
	payload, err := json.Marshal(r)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal rule: %w", err)
	}

	t := domain.Triple{
		Subject:    "rule:" + r.ID.String(),
		Predicate:  PredicateRuleDefines,
		Object:     string(payload),
		Confidence: 1,
		Source:     r.Domain,
	}
	if err := s.log.Append(ctx, &t); err != nil {
		return uuid.Nil, err
	}
	r.CreatedAt = t.CreatedAt
	r.Seq = t.Seq

	s.mu.Lock()
	s.rules = append(s.rules, *r)
	s.mu.Unlock()
	return r.ID, nil
}

// Restore rebuilds the rule registry from the log, in append order.
func (s *KnowledgeService) Restore(ctx context.Context) error {
	triples, err := s.log.Search(ctx, domain.TriplePattern{Predicate: PredicateRuleDefines})
	if err != nil {
		return err
	}
	sort.Slice(triples, func(i, j int) bool { return triples[i].Seq < triples[j].Seq })

	rules := make([]domain.Rule, 0, len(triples))
	for i := range triples {
		var r domain.Rule
		if err := json.Unmarshal([]byte(triples[i].Object), &r); err != nil {
			s.logger.Warn("skipping unreadable rule record",
				zap.String("triple_id", triples[i].ID.String()), zap.Error(err))
			continue
		}
		r.CreatedAt = triples[i].CreatedAt
		r.Seq = triples[i].Seq
		rules = append(rules, r)
	}

	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()
	s.logger.Info("rule registry restored", zap.Int("rules", len(rules)))
	return nil
}

// Rules returns a snapshot of the registry in creation order.
func (s *KnowledgeService) Rules() []domain.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// ApplyRules evaluates every registered rule against env and returns the
// highest-priority satisfied one; ties go to the earliest created. Returns
// ErrInconclusive when nothing matches.
func (s *KnowledgeService) ApplyRules(ctx context.Context, env map[string]string) (*domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.Rule
	for i := range s.rules {
		r := &s.rules[i]
		if !EvalCondition(r.Condition, env) {
			continue
		}
		// registry order is creation order, so a strict > keeps the
		// earlier rule on priority ties
		if best == nil || r.Priority > best.Priority {
			best = r
		}
	}
	if best == nil {
		return nil, ErrInconclusive
	}
	out := *best
	return &out, nil
}

// ApplyRulesToStatement parses assignments out of a free-text statement and
// runs the rules over them.
func (s *KnowledgeService) ApplyRulesToStatement(ctx context.Context, statement string) (*domain.Rule, error) {
	return s.ApplyRules(ctx, ParseAssignments(statement))
}

// ValidateFact checks a statement against stored facts. Matched confidences
// are aggregated as a mean weighted by exponential recency decay; with no
// match the rule engine gets the last word.
func (s *KnowledgeService) ValidateFact(ctx context.Context, statement string) (*domain.FactValidation, error) {
	if statement == "" {
		return nil, &domain.ValidationError{Field: "statement", Reason: "must not be empty"}
	}

	triples, err := s.log.Search(ctx, domain.TriplePattern{Predicate: PredicateFactStates})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var (
		weightedSum float64
		weightTotal float64
		reasons     []string
	)
	for i := range triples {
		t := &triples[i]
		if !factMatches(t.Object, statement) {
			continue
		}
		hours := now.Sub(t.CreatedAt).Hours()
		if hours < 0 {
			hours = 0
		}
		w := math.Exp(-s.DecayLambda * hours)
		weightedSum += w * t.Confidence
		weightTotal += w
		reasons = append(reasons, fmt.Sprintf("matches fact %q (confidence %.2f)", t.Object, t.Confidence))
	}

	result := &domain.FactValidation{}
	if weightTotal > 0 {
		result.Confidence = weightedSum / weightTotal
		result.IsValid = result.Confidence >= factValidThreshold
		result.Reasons = reasons
	} else {
		rule, err := s.ApplyRulesToStatement(ctx, statement)
		switch {
		case err == nil:
			result.IsValid = true
			result.Confidence = 0.5 + 0.05*float64(rule.Priority)
			result.Reasons = []string{fmt.Sprintf("rule %q applied: %s", rule.Name, rule.Consequence)}
		case errors.Is(err, ErrInconclusive):
			result.Reasons = []string{"no matching facts or rules"}
		default:
			return nil, err
		}
	}

	s.suggest(ctx, statement, result)
	return result, nil
}

func factMatches(object, statement string) bool {
	return containsFold(object, statement) || containsFold(statement, object)
}

// suggest fills Suggestions from embedding similarity when the log backend
// supports it. Best-effort only.
func (s *KnowledgeService) suggest(ctx context.Context, statement string, result *domain.FactValidation) {
	if s.embed == nil {
		return
	}
	ss, ok := s.log.(domain.SimilaritySearcher)
	if !ok {
		return
	}
	emb, err := s.embed.Embed(ctx, statement)
	if err != nil {
		s.logger.Debug("suggestion embedding failed", zap.Error(err))
		return
	}
	similar, err := ss.FindSimilar(ctx, emb, suggestionLimit)
	if err != nil {
		s.logger.Debug("similarity lookup failed", zap.Error(err))
		return
	}
	for i := range similar {
		if similar[i].Object != statement {
			result.Suggestions = append(result.Suggestions, similar[i].Object)
		}
	}
}
