// Package extractor implements name extraction on top of a chat LLM.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/logger"
)

// Ensure Extractor implements the interfaces.
var (
	_ driven.Extractor        = (*Extractor)(nil)
	_ driven.PromptStoreAware = (*Extractor)(nil)
)

// Config tunes extraction calls.
type Config struct {
	// Provider identifies the LLM behind the service.
	Provider domain.AIProvider

	// RequestsPerSecond throttles calls. Zero disables throttling.
	RequestsPerSecond float64

	// Temperature is passed to the model. Zero keeps the provider default.
	Temperature float64

	// MaxTokens caps the reply length. Zero keeps the provider default.
	MaxTokens int
}

// Extractor asks an LLM for the proper names of a unit.
type Extractor struct {
	llm         driven.LLMService
	provider    domain.AIProvider
	limiter     *rate.Limiter
	schema      *jsonschema.Schema
	opts        driven.ChatOptions
	promptStore driven.PromptStore
}

// extractionResponse is the decoded reply payload.
type extractionResponse struct {
	Names []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"names"`
}

// New creates an Extractor over the given LLM service.
func New(llm driven.LLMService, cfg Config) (*Extractor, error) {
	if llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("%w: requests per second must not be negative", domain.ErrInvalidInput)
	}
	schema, err := compileSchema(responseSchema)
	if err != nil {
		return nil, err
	}

	e := &Extractor{
		llm:      llm,
		provider: cfg.Provider,
		schema:   schema,
		opts: driven.ChatOptions{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			JSONMode:    true,
		},
	}
	if cfg.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return e, nil
}

// SetPromptStore sets the store the extract_names prompt is loaded from.
func (e *Extractor) SetPromptStore(store driven.PromptStore) {
	e.promptStore = store
}

// Provider returns the configured provider.
func (e *Extractor) Provider() domain.AIProvider {
	return e.provider
}

// Extract returns the raw names found in req.Text.
// A malformed reply is logged and yields no names.
func (e *Extractor) Extract(ctx context.Context, req driven.ExtractionRequest) ([]domain.ExtractedName, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: throttle: %w", domain.ErrExtractionService, err)
		}
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: buildSystemPrompt(e.loadPrompt(), req.PrecedingContext)},
		{Role: "user", Content: req.Text},
	}

	logger.Debug("extract: input=%q context=%t", req.Text, req.PrecedingContext != "")
	resp, err := e.llm.Chat(ctx, messages, e.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtractionService, e.provider, err)
	}
	logger.Debug("extract: reply=%s tokens=%d/%d", resp.Content, resp.Usage.Input, resp.Usage.Output)
	if resp.Truncated {
		logger.Warn("extract: reply for %q hit the token limit", req.Text)
	}

	names, err := e.parse(resp.Content)
	if err != nil {
		logger.Warn("extract: %v", err)
		return []domain.ExtractedName{}, nil
	}
	return names, nil
}

// parse validates and decodes a reply. An empty reply means no names.
func (e *Extractor) parse(reply string) ([]domain.ExtractedName, error) {
	payload := trimToObject(reply)
	if payload == "" {
		return []domain.ExtractedName{}, nil
	}

	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionParse, err)
	}
	if err := e.schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionParse, err)
	}

	var resp extractionResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionParse, err)
	}

	names := make([]domain.ExtractedName, 0, len(resp.Names))
	for _, n := range resp.Names {
		names = append(names, domain.ExtractedName{
			Name: n.Name,
			Type: domain.ParseNameType(n.Type),
		})
	}
	return names, nil
}

// trimToObject strips markdown fences or chatter around the JSON object.
func trimToObject(reply string) string {
	reply = strings.TrimSpace(reply)
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return reply
	}
	return reply[start : end+1]
}

// loadPrompt loads the prompt from the store, falling back to the default if unavailable.
func (e *Extractor) loadPrompt() string {
	if e.promptStore == nil {
		return DefaultPrompt
	}
	prompt, err := e.promptStore.Load(driven.PromptExtractNames)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return DefaultPrompt
	}
	return prompt
}
