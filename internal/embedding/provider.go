package embedding

import (
	"fmt"

	"github.com/noetic-labs/noesis/internal/domain"
)

// Provider constants
const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
	ProviderNone   = "none"
)

// NewClient creates an embedding client based on the provider name.
// "none" returns a nil client: similarity suggestions are simply disabled.
func NewClient(provider, apiKey string) (domain.EmbeddingClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI embedding provider")
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	case ProviderNone, "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (valid options: openai, mock, none)", provider)
	}
}
