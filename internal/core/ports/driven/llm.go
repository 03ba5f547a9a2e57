// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides chat model operations for name extraction.
//
// Implementations include:
//   - OpenAI (chat completions)
//   - Anthropic (messages API)
//   - Ollama (local models such as gemma)
type LLMService interface {
	// Chat conducts a conversation and returns the assistant reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (*ChatResponse, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Zero leaves the provider default in place.
	Temperature float64

	// JSONMode asks the provider to answer with a single JSON object.
	JSONMode bool
}

// ChatResponse is one assistant reply.
type ChatResponse struct {
	// Content is the reply text.
	Content string

	// Usage is the token count the provider reported for the call.
	Usage TokenUsage

	// Truncated is set when the reply stopped at the token limit.
	Truncated bool
}

// TokenUsage counts the tokens of one call.
type TokenUsage struct {
	Input  int
	Output int
}

// Total returns input plus output tokens.
func (u TokenUsage) Total() int {
	return u.Input + u.Output
}
