package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseTokens(t *testing.T) {
	assert.Equal(t, int64(1500), parseTokens("1500", 10))
	assert.Equal(t, int64(2_500_000), parseTokens("2_500_000", 10))
	assert.Equal(t, int64(10), parseTokens("", 10))
	assert.Equal(t, int64(10), parseTokens("-5", 10))
	assert.Equal(t, int64(10), parseTokens("many", 10))
}

func TestSettingsShowCmd(t *testing.T) {
	settings := newMockSettingsService()
	settings.settings.LLM.APIKey = "sk-1234567890abcdef"
	settings.settings.Corpus.Dir = "/srv/corpus"

	out, err := runCLI(t, &Services{Settings: settings}, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "OpenAI (cloud)")
	assert.Contains(t, out, "sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.Contains(t, out, "/srv/corpus")
	assert.Contains(t, out, "2,500,000")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_ValidationWarning(t *testing.T) {
	settings := newMockSettingsService()
	settings.validateErr = errors.New("corpus directory is not set")

	out, err := runCLI(t, &Services{Settings: settings}, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: corpus directory is not set")
	assert.Contains(t, out, "nomina settings wizard")
}

func TestSettingsLLMCmd_Ollama(t *testing.T) {
	withStdin(t, "1\n\n", false)
	settings := newMockSettingsService()

	out, err := runCLI(t, &Services{Settings: settings}, "settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.settings.LLM.Provider)
	assert.Equal(t, "gemma3", settings.settings.LLM.Model)
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestSettingsLLMCmd_RequiresAPIKey(t *testing.T) {
	withStdin(t, "2\n\n\n", false)

	_, err := runCLI(t, &Services{Settings: newMockSettingsService()}, "settings", "llm")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSettingsLLMCmd_ValidationFails(t *testing.T) {
	withStdin(t, "1\n\n", false)
	settings := newMockSettingsService()
	settings.llmErr = errors.New("connection refused")

	_, err := runCLI(t, &Services{Settings: settings}, "settings", "llm")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSettingsWizardCmd(t *testing.T) {
	withStdin(t, "2\ngpt-4o-mini\nsk-test-key-123456\n/srv/corpus\n1000\n2000\nadmin-key-123456\n", false)
	settings := newMockSettingsService()

	out, err := runCLI(t, &Services{Settings: settings}, "settings", "wizard")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.settings.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", settings.settings.LLM.Model)
	assert.Equal(t, "sk-test-key-123456", settings.settings.LLM.APIKey)
	assert.Equal(t, "/srv/corpus", settings.settings.Corpus.Dir)
	assert.Equal(t, domain.BudgetThresholds{Warning: 1000, Limit: 2000}, settings.settings.Budget.Thresholds)
	assert.Equal(t, "admin-key-123456", settings.settings.Usage.AdminKey)
	assert.Equal(t, 1, settings.saved)
	assert.Contains(t, out, "All settings are valid and saved.")
}

func TestSettingsWizardCmd_RejectsInvertedThresholds(t *testing.T) {
	withStdin(t, "1\n\n\n3000\n2000\n", false)
	settings := newMockSettingsService()

	_, err := runCLI(t, &Services{Settings: settings}, "settings", "wizard")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, settings.saved)
}

func TestSettingsCmd_ErrorsWithoutServices(t *testing.T) {
	_, err := runCLI(t, nil, "settings", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
