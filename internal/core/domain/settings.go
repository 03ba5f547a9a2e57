package domain

const unknownDescription = "Unknown"

// AIProvider identifies an extraction service provider.
// The set is closed; the provider is chosen at configuration time.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance (e.g. serving gemma).
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds extraction provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (optional for cloud providers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerSecond throttles extraction calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// UsageSettings configures the accounting endpoint used for budget tracking.
type UsageSettings struct {
	// AdminKey authorises the organisation usage endpoint.
	AdminKey string

	// BaseURL is the API base URL (default: OpenAI).
	BaseURL string
}

// IsConfigured returns true if usage can be queried.
func (u UsageSettings) IsConfigured() bool {
	return u.AdminKey != ""
}

// BudgetSettings configures the consumption budget.
type BudgetSettings struct {
	Thresholds BudgetThresholds

	// RefreshEvery is how many newly processed units pass between refreshes.
	RefreshEvery int
}

// CorpusSettings configures the corpus collaborator.
type CorpusSettings struct {
	// Dir holds _index.json and one <key>.json file per collection.
	Dir string

	// Version is the corpus edition stored in every unit reference.
	Version string

	// Exclude lists collection keys hidden from listings and sweeps.
	Exclude []string
}

// FilterSettings configures the heuristic pre-filter.
type FilterSettings struct {
	// LexiconPath optionally points to a YAML lexicon file.
	LexiconPath string
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM    LLMSettings
	Usage  UsageSettings
	Budget BudgetSettings
	Corpus CorpusSettings
	Filter FilterSettings
}

// DefaultExcludedCollections are collections left out of the corpus by default.
func DefaultExcludedCollections() []string {
	return []string{
		"1_juan", "2_juan", "proverbios", "eclesiastes", "lamentaciones",
		"nahum", "habacuc", "joel", "abdias", "sofonias", "hageo",
		"malaquias", "efesios",
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured until a provider and key are supplied.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
		},
		Budget: BudgetSettings{
			Thresholds:   DefaultBudgetThresholds(),
			RefreshEvery: DefaultRefreshEvery,
		},
		Corpus: CorpusSettings{
			Version: DefaultCorpusVersion,
			Exclude: DefaultExcludedCollections(),
		},
	}
}

// AllLLMProviders returns providers that support extraction.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "gemma3",
		AIProviderOpenAI:    "gpt-5-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}
