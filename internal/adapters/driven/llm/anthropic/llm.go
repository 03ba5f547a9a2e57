// Package anthropic provides an LLM service adapter using the Anthropic messages API.
package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/nomina/internal/adapters/driven/llm/httpjson"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultTimeout   = 120 * time.Second
	defaultMaxTokens = 1024

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"

	// jsonPrefill starts the assistant turn so the reply continues a JSON object.
	jsonPrefill = "{"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-haiku-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// Retry governs retries of rate-limited or overloaded calls.
	// The zero value uses httpjson.DefaultRetryPolicy.
	Retry httpjson.RetryPolicy
}

// LLMService provides chat operations using the Anthropic API.
type LLMService struct {
	client *httpjson.Client
	model  string
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = httpjson.DefaultRetryPolicy()
	}

	return &LLMService{
		client: httpjson.New(httpjson.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Header: http.Header{
				"X-Api-Key":         {cfg.APIKey},
				"Anthropic-Version": {anthropicVersion},
			},
			Retry: cfg.Retry,
		}),
		model: cfg.Model,
	}, nil
}

// Chat sends the conversation to /v1/messages. System messages are lifted
// into the system field. In JSON mode the assistant turn is prefilled with
// "{" and the prefill is restored on the returned text.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (*driven.ChatResponse, error) {
	var systemParts []string
	apiMessages := make([]messagesMessage, 0, len(messages)+1)
	for _, msg := range messages {
		if msg.Role == "system" {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		apiMessages = append(apiMessages, messagesMessage{Role: msg.Role, Content: msg.Content})
	}
	if opts.JSONMode {
		apiMessages = append(apiMessages, messagesMessage{Role: "assistant", Content: jsonPrefill})
	}

	// Anthropic requires max_tokens to be set
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	reqBody := messagesRequest{
		Model:     s.model,
		Messages:  apiMessages,
		MaxTokens: maxTokens,
		System:    strings.Join(systemParts, "\n\n"),
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = opts.Temperature
	}

	var msgResp messagesResponse
	if err := s.client.Post(ctx, "/v1/messages", reqBody, &msgResp); err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	if len(msgResp.Content) == 0 {
		return nil, fmt.Errorf("anthropic: no response content returned")
	}

	var result strings.Builder
	if opts.JSONMode {
		result.WriteString(jsonPrefill)
	}
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}

	return &driven.ChatResponse{
		Content: result.String(),
		Usage: driven.TokenUsage{
			Input:  msgResp.Usage.InputTokens,
			Output: msgResp.Usage.OutputTokens,
		},
		Truncated: msgResp.StopReason == "max_tokens",
	}, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.client.Get(ctx, "/v1/models", nil); err != nil {
		return fmt.Errorf("anthropic: ping: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
