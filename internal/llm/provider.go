package llm

import (
	"fmt"

	"github.com/noetic-labs/noesis/internal/domain"
)

// Provider constants
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// NewClient creates an LLM client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty
// (except for mock).
func NewClient(provider, apiKey string) (domain.LLMClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: openai, anthropic, mock)", provider)
	}
}

func proofPrompt(precondition, command, postcondition string) string {
	return fmt.Sprintf(
		"Write a short informal proof sketch for the Hoare triple {%s} %s {%s}. "+
			"State the key invariant in at most five sentences. Plain text only.",
		precondition, command, postcondition)
}

func explainPrompt(pattern, description, code string) string {
	return fmt.Sprintf(
		"The error pattern %q (%s) was detected in this code segment:\n\n%s\n\n"+
			"Explain in two sentences why this code likely exhibits the pattern.",
		pattern, description, code)
}
