package llm

import "context"

// MockClient is a configurable LLM client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	GenerateProofResponse  string
	GenerateProofError     error
	ExplainPatternResponse string
	ExplainPatternError    error

	// Call tracking for assertions
	GenerateProofCalls  []struct{ Precondition, Command, Postcondition string }
	ExplainPatternCalls []struct{ Pattern, Description, Code string }
}

func NewMockClient() *MockClient {
	return &MockClient{
		GenerateProofResponse:  "Mock proof sketch",
		ExplainPatternResponse: "Mock pattern explanation",
	}
}

func (c *MockClient) GenerateProof(ctx context.Context, precondition, command, postcondition string) (string, error) {
	c.GenerateProofCalls = append(c.GenerateProofCalls, struct{ Precondition, Command, Postcondition string }{precondition, command, postcondition})
	if c.GenerateProofError != nil {
		return "", c.GenerateProofError
	}
	return c.GenerateProofResponse, nil
}

func (c *MockClient) ExplainPattern(ctx context.Context, pattern, description, code string) (string, error) {
	c.ExplainPatternCalls = append(c.ExplainPatternCalls, struct{ Pattern, Description, Code string }{pattern, description, code})
	if c.ExplainPatternError != nil {
		return "", c.ExplainPatternError
	}
	return c.ExplainPatternResponse, nil
}
