package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// pingTimeout bounds a single connectivity check.
const pingTimeout = 5 * time.Second

// ConfigValidator checks LLM settings before they are relied on for a sweep.
// Shape errors (unknown provider, missing key) are reported without any
// network traffic; otherwise the provider is pinged once.
type ConfigValidator struct {
	timeout time.Duration
	build   func(*domain.LLMSettings) (driven.LLMService, error)
}

// NewConfigValidator creates a validator that pings through CreateLLMService.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		timeout: pingTimeout,
		build:   CreateLLMService,
	}
}

// ValidateLLM returns nil for empty settings so an unconfigured install is not
// treated as broken.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || config.Provider == "" {
		return nil
	}
	if !config.Provider.IsValid() {
		return fmt.Errorf("%w: LLM provider %q", domain.ErrUnsupportedType, config.Provider)
	}
	if !config.IsConfigured() {
		return fmt.Errorf("%w: %s requires an API key", domain.ErrInvalidInput, config.Provider)
	}

	svc, err := v.build(config)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s at %s: %w", domain.ErrLLMUnavailable, config.Provider, endpointOf(config), err)
	}
	return nil
}

func endpointOf(config *domain.LLMSettings) string {
	if config.BaseURL != "" {
		return config.BaseURL
	}
	return "default endpoint"
}
