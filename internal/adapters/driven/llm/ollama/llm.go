// Package ollama provides an LLM service adapter for local models served by Ollama.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/nomina/internal/adapters/driven/llm/httpjson"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "gemma3"
	DefaultLLMTimeout = 300 * time.Second
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: gemma3).
	Model string

	// Timeout is the request timeout (default: 300s). Local models are slow on CPU.
	Timeout time.Duration
}

// LLMService provides chat operations using Ollama.
// A local server has no rate limits, so calls are not retried.
type LLMService struct {
	client *httpjson.Client
	model  string
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  *options      `json:"options,omitempty"`
}

// chatMessage is the Ollama chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	DoneReason      string      `json:"done_reason,omitempty"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
	Error           string      `json:"error,omitempty"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: httpjson.New(httpjson.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Retry:   httpjson.NoRetry(),
		}),
		model: cfg.Model,
	}
}

// Chat sends the conversation to /api/chat without streaming.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (*driven.ChatResponse, error) {
	chatMessages := make([]chatMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	reqBody := chatRequest{
		Model:    s.model,
		Messages: chatMessages,
		Stream:   false,
	}
	if opts.JSONMode {
		reqBody.Format = "json"
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		reqBody.Options = &options{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
		}
	}

	var chatResp chatResponse
	if err := s.client.Post(ctx, "/api/chat", reqBody, &chatResp); err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	if chatResp.Error != "" {
		return nil, fmt.Errorf("ollama: %s", chatResp.Error)
	}

	return &driven.ChatResponse{
		Content: chatResp.Message.Content,
		Usage: driven.TokenUsage{
			Input:  chatResp.PromptEvalCount,
			Output: chatResp.EvalCount,
		},
		Truncated: chatResp.DoneReason == "length",
	}, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists local models, which needs no inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.client.Get(ctx, "/api/tags", nil); err != nil {
		return fmt.Errorf("ollama: ping: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
