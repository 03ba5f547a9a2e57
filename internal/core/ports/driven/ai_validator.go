package driven

import "github.com/custodia-labs/nomina/internal/core/domain"

// AIConfigValidator checks LLM settings before they are saved or used.
type AIConfigValidator interface {
	// ValidateLLM reports ErrUnsupportedType or ErrInvalidInput for malformed
	// settings and ErrLLMUnavailable when the provider cannot be reached.
	// Settings with no provider are valid.
	ValidateLLM(config *domain.LLMSettings) error
}
