package service

import (
	"context"
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	"go.uber.org/zap"
)

// Triple predicate used by the validation audit trail.
const PredicateCodeValidated = "code_validated"

const (
	// patternCheckCost is the fixed thinking-token cost per recorded finding.
	patternCheckCost = 2
	// invalidRiskThreshold: a segment whose capped finding probability sum
	// reaches this is no longer considered valid.
	invalidRiskThreshold = 0.3

	baseAllocation   = 10
	complexityWeight = 2
	riskWeight       = 20
	maxComplexity    = 10
	keywordWeight    = 0.5
)

var controlFlowRe = regexp.MustCompile(`\b(if|else|elif|for|while|switch|case|catch|try|select)\b`)

// CognitiveService allocates risk-budgeted thinking tokens per code segment
// and spends them scanning the error-pattern registry. The registry is
// injected and scanned in order; under tight budgets only earlier-registered
// patterns get checked, a documented degradation.
type CognitiveService struct {
	patterns []domain.ErrorPattern
	audit    *AuditLogger
	llm      domain.LLMClient
	logger   *zap.Logger
}

func NewCognitiveService(patterns []domain.ErrorPattern, audit *AuditLogger, logger *zap.Logger) *CognitiveService {
	return &CognitiveService{
		patterns: patterns,
		audit:    audit,
		logger:   logger,
	}
}

// SetLLMClient enables per-finding explanations. Never drives control flow.
func (s *CognitiveService) SetLLMClient(c domain.LLMClient) {
	s.llm = c
}

// Patterns returns the registry in scan order.
func (s *CognitiveService) Patterns() []domain.ErrorPattern {
	out := make([]domain.ErrorPattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// AllocateTokens sizes the thinking budget for a code segment:
// allocation = round(10 + complexity*2 + risk*20).
func (s *CognitiveService) AllocateTokens(code string) *domain.ThinkingToken {
	complexity := scoreComplexity(code)
	risk := s.scoreRisk(code)
	allocation := int(math.Round(baseAllocation + complexity*complexityWeight + risk*riskWeight))
	return &domain.ThinkingToken{
		Allocation: allocation,
		Used:       0,
		Remaining:  allocation,
		Complexity: complexity,
		Risk:       risk,
	}
}

// scoreComplexity normalizes control-flow keyword counts plus brace nesting
// depth into [0,10].
func scoreComplexity(code string) float64 {
	keywords := len(controlFlowRe.FindAllString(code, -1))
	score := keywordWeight*float64(keywords) + float64(nestingDepth(code))
	return math.Min(maxComplexity, score)
}

func nestingDepth(code string) int {
	depth, max := 0, 0
	for _, r := range code {
		switch r {
		case '{':
			depth++
			if depth > max {
				max = depth
			}
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return max
}

// scoreRisk sums the probabilities of every matching pattern, capped at 1.
// Matching a superset of patterns therefore never lowers the score.
func (s *CognitiveService) scoreRisk(code string) float64 {
	var sum float64
	for i := range s.patterns {
		if s.patterns[i].Matches(code) {
			sum += s.patterns[i].Probability
		}
	}
	return math.Min(1, sum)
}

// Validate scans the registry in order against the segment, spending a fixed
// cost per recorded finding. Scanning stops once the remaining budget cannot
// cover another finding; remaining never goes negative.
func (s *CognitiveService) Validate(ctx context.Context, segment string) (*domain.CodeValidation, error) {
	if strings.TrimSpace(segment) == "" {
		return nil, &domain.ValidationError{Field: "segment", Reason: "must not be empty"}
	}

	token := s.AllocateTokens(segment)
	var findings []domain.Finding
	for i := range s.patterns {
		p := &s.patterns[i]
		if token.Remaining < patternCheckCost {
			break
		}
		if !p.Matches(segment) {
			continue
		}
		if !token.Spend(patternCheckCost) {
			break
		}
		f := domain.Finding{
			Pattern:     p.Name,
			Description: p.Description,
			Probability: p.Probability,
			Prevention:  p.PreventionStrategy,
		}
		if s.llm != nil {
			explanation, err := s.llm.ExplainPattern(ctx, p.Name, p.Description, segment)
			if err != nil {
				s.logger.Debug("pattern explanation failed", zap.String("pattern", p.Name), zap.Error(err))
			} else {
				f.Explanation = explanation
			}
		}
		findings = append(findings, f)
	}

	var sum float64
	for i := range findings {
		sum += findings[i].Probability
	}
	sum = math.Min(1, sum)

	result := &domain.CodeValidation{
		IsValid:    sum < invalidRiskThreshold,
		Confidence: 1 - sum,
		Errors:     findings,
		TokensUsed: token.Used,
		Token:      token,
	}
	if token.Allocation > 0 {
		result.Reward = result.Confidence * float64(token.Remaining) / float64(token.Allocation)
	}

	s.auditResult(result)
	return result, nil
}

func (s *CognitiveService) auditResult(result *domain.CodeValidation) {
	if s.audit == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("validation audit marshal failed", zap.Error(err))
		return
	}
	s.audit.Record(domain.Triple{
		Subject:    "validation:" + uuid.NewString(),
		Predicate:  PredicateCodeValidated,
		Object:     string(raw),
		Confidence: result.Confidence,
		Source:     "cognitive",
	})
}
