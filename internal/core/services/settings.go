package services

import (
	"fmt"
	"os"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMRate           = "llm.requests_per_second"
	keyUsageAdminKey     = "usage.admin_key"
	keyUsageBaseURL      = "usage.base_url"
	keyBudgetWarning     = "budget.warning_tokens"
	keyBudgetLimit       = "budget.limit_tokens"
	keyBudgetRefresh     = "budget.refresh_every"
	keyCorpusDir         = "corpus.dir"
	keyCorpusVersion     = "corpus.version"
	keyCorpusExclude     = "corpus.exclude"
	keyFilterLexiconPath = "filter.lexicon_path"
)

// Environment fallbacks for secrets left out of the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	envOpenAIKey      = "OPENAI_API_KEY"
	envAnthropicKey   = "ANTHROPIC_API_KEY"
	envOpenAIAdminKey = "OPENAI_ADMIN_KEY"
)

// defaultOllamaURL is used when ollama is selected without a base URL.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.Getenv,
	}
}

// Get retrieves current application settings. Keys missing from the config
// file fall back to environment variables, then to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)
	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          provider,
			Model:             s.getString(keyLLMModel, domain.DefaultLLMModels()[provider]),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.getString(keyLLMAPIKey, s.providerKeyFromEnv(provider)),
			RequestsPerSecond: s.configStore.GetFloat(keyLLMRate),
		},
		Usage: domain.UsageSettings{
			AdminKey: s.getString(keyUsageAdminKey, s.lookupEnv(envOpenAIAdminKey)),
			BaseURL:  s.configStore.GetString(keyUsageBaseURL),
		},
		Budget: domain.BudgetSettings{
			Thresholds: domain.BudgetThresholds{
				Warning: s.getInt64(keyBudgetWarning, defaults.Budget.Thresholds.Warning),
				Limit:   s.getInt64(keyBudgetLimit, defaults.Budget.Thresholds.Limit),
			},
			RefreshEvery: s.getInt(keyBudgetRefresh, defaults.Budget.RefreshEvery),
		},
		Corpus: domain.CorpusSettings{
			Dir:     s.configStore.GetString(keyCorpusDir),
			Version: s.getString(keyCorpusVersion, defaults.Corpus.Version),
			Exclude: s.getStringSlice(keyCorpusExclude, defaults.Corpus.Exclude),
		},
		Filter: domain.FilterSettings{
			LexiconPath: s.configStore.GetString(keyFilterLexiconPath),
		},
	}

	return settings, nil
}

// Save persists application settings. Empty secrets are not written, so
// keys supplied through the environment stay out of the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, s.fromEnv(keyLLMAPIKey, settings.LLM.APIKey, s.providerKeyFromEnv(settings.LLM.Provider))},
		{keyLLMRate, settings.LLM.RequestsPerSecond, false},
		{keyUsageAdminKey, settings.Usage.AdminKey, s.fromEnv(keyUsageAdminKey, settings.Usage.AdminKey, s.lookupEnv(envOpenAIAdminKey))},
		{keyUsageBaseURL, settings.Usage.BaseURL, false},
		{keyBudgetWarning, settings.Budget.Thresholds.Warning, false},
		{keyBudgetLimit, settings.Budget.Thresholds.Limit, false},
		{keyBudgetRefresh, settings.Budget.RefreshEvery, false},
		{keyCorpusDir, settings.Corpus.Dir, false},
		{keyCorpusVersion, settings.Corpus.Version, false},
		{keyCorpusExclude, settings.Corpus.Exclude, false},
		{keyFilterLexiconPath, settings.Filter.LexiconPath, false},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetLLMProvider configures the extraction provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	if apiKey == "" {
		apiKey = s.providerKeyFromEnv(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the settings are usable for processing.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Budget.Thresholds.Validate(); err != nil {
		return err
	}
	if settings.Budget.RefreshEvery < 1 {
		return fmt.Errorf("%w: budget.refresh_every must be positive", domain.ErrInvalidInput)
	}
	if settings.LLM.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: llm.requests_per_second must not be negative", domain.ErrInvalidInput)
	}
	if settings.Corpus.Dir == "" {
		return fmt.Errorf("%w: corpus.dir is not configured", domain.ErrInvalidInput)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is not configured", domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt64(key string, defaultVal int64) int64 {
	val := s.configStore.GetInt64(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// fromEnv reports whether a secret is empty or only known from the environment.
func (s *SettingsService) fromEnv(key, val, envVal string) bool {
	if val == "" {
		return true
	}
	return val == envVal && s.configStore.GetString(key) == ""
}

func (s *SettingsService) providerKeyFromEnv(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.lookupEnv(envOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.lookupEnv(envAnthropicKey)
	default:
		return ""
	}
}
