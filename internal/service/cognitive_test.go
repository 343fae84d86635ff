package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/noetic-labs/noesis/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCognitiveTest() *CognitiveService {
	return NewCognitiveService(DefaultPatterns(), nil, zap.NewNop())
}

const simpleSnippet = `a := 1
b := 2
c := a + b
fmt.Println(c)
return c`

const nestedSnippet = `func process(items []int) int {
	total := 0
	for i := 0; i < len(items); i++ {
		if items[i] > 0 {
			switch {
			case items[i] > 100:
				total += 100
			case items[i] > 10:
				total += 10
			}
		} else if items[i] < 0 {
			for j := 0; j < 3; j++ {
				if total > 0 {
					total--
				}
			}
		}
	}
	return total
}`

func TestCognitiveService_AllocateTokens_SimpleCode(t *testing.T) {
	svc := newCognitiveTest()

	token := svc.AllocateTokens(simpleSnippet)
	assert.GreaterOrEqual(t, token.Allocation, 10, "straight-line code gets at least the base budget")
	assert.LessOrEqual(t, token.Allocation, 15, "straight-line code stays near the base budget")
	assert.Equal(t, token.Allocation, token.Remaining)
	assert.Zero(t, token.Used)
}

func TestCognitiveService_AllocateTokens_GrowsWithComplexity(t *testing.T) {
	svc := newCognitiveTest()

	simple := svc.AllocateTokens(simpleSnippet)
	nested := svc.AllocateTokens(nestedSnippet)

	assert.Greater(t, nested.Allocation, simple.Allocation)
	assert.Greater(t, nested.Complexity, simple.Complexity)
}

func TestCognitiveService_AllocateTokens_RiskRaisesBudget(t *testing.T) {
	svc := newCognitiveTest()

	safe := svc.AllocateTokens("x := 1")
	risky := svc.AllocateTokens("data.value.process()")

	assert.Greater(t, risky.Allocation, safe.Allocation)
	assert.Greater(t, risky.Risk, safe.Risk)
}

func TestCognitiveService_Validate_NullReference(t *testing.T) {
	svc := newCognitiveTest()

	result, err := svc.Validate(context.Background(), "data.value.process()")
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "null-reference", result.Errors[0].Pattern)
	assert.False(t, result.IsValid, "0.35 risk crosses the validity threshold")
	assert.InDelta(t, 0.65, result.Confidence, 1e-9)
	assert.Equal(t, patternCheckCost, result.TokensUsed)
	assert.Equal(t, result.Token.Allocation, result.Token.Used+result.Token.Remaining)
}

func TestCognitiveService_Validate_CleanCode(t *testing.T) {
	svc := newCognitiveTest()

	result, err := svc.Validate(context.Background(), "x := 1")
	require.NoError(t, err)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Zero(t, result.TokensUsed)
	// Nothing spent, so the reward is the full confidence.
	assert.Equal(t, 1.0, result.Reward)
}

func TestCognitiveService_Validate_EmptySegment(t *testing.T) {
	svc := newCognitiveTest()

	var ve *domain.ValidationError
	_, err := svc.Validate(context.Background(), "   \n ")
	require.True(t, errors.As(err, &ve), "got %v", err)
}

func TestCognitiveService_Validate_BudgetExhaustion(t *testing.T) {
	// 20 always-matching patterns against a trivial segment. Risk caps at 1,
	// so the allocation is 30 and only the first 15 findings fit the budget.
	patterns := make([]domain.ErrorPattern, 20)
	for i := range patterns {
		patterns[i] = domain.ErrorPattern{
			Name:          fmt.Sprintf("pattern-%02d", i),
			Description:   "always fires",
			Probability:   0.05,
			DetectionRule: regexp.MustCompile(`x`),
		}
	}
	svc := NewCognitiveService(patterns, nil, zap.NewNop())

	result, err := svc.Validate(context.Background(), "x")
	require.NoError(t, err)

	assert.Len(t, result.Errors, 15)
	assert.Equal(t, 0, result.Token.Remaining, "the budget is spent exactly")
	assert.GreaterOrEqual(t, result.Token.Remaining, 0, "remaining never goes negative")
	// Degradation is ordered: the earliest-registered patterns get checked.
	assert.Equal(t, "pattern-00", result.Errors[0].Pattern)
	assert.Equal(t, "pattern-14", result.Errors[14].Pattern)
}

func TestCognitiveService_Validate_ExplanationsFromLLM(t *testing.T) {
	svc := newCognitiveTest()
	mock := llm.NewMockClient()
	mock.ExplainPatternResponse = "chained access without a guard"
	svc.SetLLMClient(mock)

	result, err := svc.Validate(context.Background(), "data.value.process()")
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "chained access without a guard", result.Errors[0].Explanation)
}

func TestCognitiveService_Validate_RewardFavorsFrugality(t *testing.T) {
	svc := newCognitiveTest()
	ctx := context.Background()

	clean, err := svc.Validate(ctx, "x := 1")
	require.NoError(t, err)
	flagged, err := svc.Validate(ctx, "data.value.process()")
	require.NoError(t, err)

	assert.Greater(t, clean.Reward, flagged.Reward)
}

func TestScoreComplexity_Capped(t *testing.T) {
	code := ""
	for i := 0; i < 50; i++ {
		code += "if x { for y { switch z { case 1: } } }\n"
	}
	assert.Equal(t, 10.0, scoreComplexity(code))
}
