// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"

	"github.com/custodia-labs/nomina/internal/adapters/driven/extractor"
	anthropicllm "github.com/custodia-labs/nomina/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/nomina/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/nomina/internal/adapters/driven/llm/openai"
	openaiusage "github.com/custodia-labs/nomina/internal/adapters/driven/usage/openai"
	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

// extractionTemperature is sent with every extraction call.
// Reasoning models such as gpt-5-mini only accept 1.
const extractionTemperature = 1.0

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	LLMService  driven.LLMService
	Extractor   *extractor.Extractor
	PromptStore driven.PromptStore // User-customisable prompt templates.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Option configures CreateExtractor.
type Option func(*options)

type options struct {
	middleware []func(driven.LLMService) driven.LLMService
}

// WithLLMMiddleware wraps the LLM service the extractor calls, e.g. for
// instrumentation. Middlewares apply in the order given; InitResult.Close
// still closes the underlying service.
func WithLLMMiddleware(wrap func(driven.LLMService) driven.LLMService) Option {
	return func(o *options) {
		if wrap != nil {
			o.middleware = append(o.middleware, wrap)
		}
	}
}

// CreateExtractor builds the LLM service for the settings and wraps it in an
// extractor that loads its prompt from prompts (nil keeps the built-in prompt).
// Connectivity is not checked; the first extraction surfaces service errors.
func CreateExtractor(settings *domain.LLMSettings, prompts driven.PromptStore, opts ...Option) (*InitResult, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider or API key missing. Run 'nomina settings' to fix",
			domain.ErrLLMUnavailable)
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	calls := svc
	for _, wrap := range o.middleware {
		calls = wrap(calls)
	}

	ex, err := extractor.New(calls, extractor.Config{
		Provider:          settings.Provider,
		RequestsPerSecond: settings.RequestsPerSecond,
		Temperature:       extractionTemperature,
	})
	if err != nil {
		svc.Close()
		return nil, err
	}
	if prompts != nil {
		ex.SetPromptStore(prompts)
	}

	return &InitResult{
		LLMService:  svc,
		Extractor:   ex,
		PromptStore: prompts,
	}, nil
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateUsageAccountant creates the usage accountant for budget tracking.
// Returns nil if no admin key is configured; the budget then stays fail-open.
func CreateUsageAccountant(settings *domain.UsageSettings) (driven.UsageAccountant, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	return openaiusage.NewAccountant(openaiusage.Config{
		AdminKey: settings.AdminKey,
		BaseURL:  settings.BaseURL,
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
