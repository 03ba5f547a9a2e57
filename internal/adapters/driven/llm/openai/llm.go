// Package openai provides an LLM service adapter using the OpenAI chat completions API.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/nomina/internal/adapters/driven/llm/httpjson"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-5-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the LLM model to use (default: gpt-5-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// Retry governs retries of rate-limited or failed chat calls.
	// The zero value uses httpjson.DefaultRetryPolicy.
	Retry httpjson.RetryPolicy
}

// LLMService provides chat operations using the OpenAI API.
type LLMService struct {
	client *httpjson.Client
	model  string
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model               string              `json:"model"`
	Messages            []chatCompletionMsg `json:"messages"`
	MaxCompletionTokens int                 `json:"max_completion_tokens,omitempty"`
	Temperature         float64             `json:"temperature,omitempty"`
	ResponseFormat      *responseFormat     `json:"response_format,omitempty"`
}

// responseFormat selects structured output.
type responseFormat struct {
	Type string `json:"type"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = httpjson.DefaultRetryPolicy()
	}

	return &LLMService{
		client: httpjson.New(httpjson.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Header:  http.Header{"Authorization": {"Bearer " + cfg.APIKey}},
			Retry:   cfg.Retry,
		}),
		model: cfg.Model,
	}, nil
}

// Chat sends the conversation to /chat/completions and returns the first choice.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (*driven.ChatResponse, error) {
	chatMessages := make([]chatCompletionMsg, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatCompletionMsg{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	reqBody := chatCompletionRequest{
		Model:    s.model,
		Messages: chatMessages,
	}
	if opts.MaxTokens > 0 {
		reqBody.MaxCompletionTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = opts.Temperature
	}
	if opts.JSONMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var chatResp chatCompletionResponse
	if err := s.client.Post(ctx, "/chat/completions", reqBody, &chatResp); err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no response choices returned")
	}

	choice := chatResp.Choices[0]
	return &driven.ChatResponse{
		Content: choice.Message.Content,
		Usage: driven.TokenUsage{
			Input:  chatResp.Usage.PromptTokens,
			Output: chatResp.Usage.CompletionTokens,
		},
		Truncated: choice.FinishReason == "length",
	}, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.client.Get(ctx, "/models", nil); err != nil {
		return fmt.Errorf("openai: ping: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
