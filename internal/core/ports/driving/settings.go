package driving

import "github.com/custodia-labs/nomina/internal/core/domain"

// SettingsService reads and updates the persisted configuration.
type SettingsService interface {
	// Get returns stored settings with defaults and environment keys filled in.
	Get() (*domain.AppSettings, error)

	Save(settings *domain.AppSettings) error

	// SetLLMProvider stores the provider, model and key in one step.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate reports the first setting that prevents a sweep.
	Validate() error

	GetDefaults() domain.AppSettings

	// ValidateLLMConfig pings the configured provider.
	ValidateLLMConfig() error
}
