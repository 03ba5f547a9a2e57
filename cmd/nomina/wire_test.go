package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nomina/internal/adapters/driving/cli"
	"github.com/custodia-labs/nomina/internal/core/domain"
)

func TestApplyOverrides_CorpusDir(t *testing.T) {
	settings := domain.DefaultAppSettings()

	require.NoError(t, applyOverrides(&settings, cli.Options{CorpusDir: "/srv/corpus"}))

	assert.Equal(t, "/srv/corpus", settings.Corpus.Dir)
}

func TestApplyOverrides_ProviderResetsModelAndKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
	settings := domain.DefaultAppSettings()
	settings.LLM.Model = "gpt-4o-mini"
	settings.LLM.APIKey = "sk-openai"
	settings.LLM.BaseURL = "https://proxy.example"

	require.NoError(t, applyOverrides(&settings, cli.Options{Provider: "anthropic"}))

	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.LLM.Model)
	assert.Equal(t, "sk-ant-env", settings.LLM.APIKey)
	assert.Empty(t, settings.LLM.BaseURL)
}

func TestApplyOverrides_SameProviderKeepsSettings(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.LLM.Model = "gpt-4o-mini"
	settings.LLM.APIKey = "sk-openai"

	require.NoError(t, applyOverrides(&settings, cli.Options{Provider: "openai"}))

	assert.Equal(t, "gpt-4o-mini", settings.LLM.Model)
	assert.Equal(t, "sk-openai", settings.LLM.APIKey)
}

func TestApplyOverrides_OllamaNeedsNoKey(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.LLM.APIKey = "sk-openai"

	require.NoError(t, applyOverrides(&settings, cli.Options{Provider: "ollama"}))

	assert.Empty(t, settings.LLM.APIKey)
	assert.True(t, settings.LLM.IsConfigured())
}

func TestApplyOverrides_UnknownProvider(t *testing.T) {
	settings := domain.DefaultAppSettings()

	err := applyOverrides(&settings, cli.Options{Provider: "gemini"})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestBootstrap_WithoutCorpus(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_ADMIN_KEY", "")
	dir := t.TempDir()

	svc, cleanup, err := bootstrap(context.Background(), cli.Options{
		ConfigDir: dir,
		DataDir:   filepath.Join(dir, "data"),
	})
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, svc.Names)
	assert.NotNil(t, svc.Settings)
	assert.NotNil(t, svc.Budget)
	assert.Nil(t, svc.Corpus)
	assert.Nil(t, svc.Orchestrator)
	assert.FileExists(t, filepath.Join(dir, "data", "nomina.db"))
}

func TestBootstrap_WithCorpusAndNoLLM(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_ADMIN_KEY", "")
	dir := t.TempDir()

	svc, cleanup, err := bootstrap(context.Background(), cli.Options{
		ConfigDir: dir,
		DataDir:   filepath.Join(dir, "data"),
		CorpusDir: filepath.Join(dir, "corpus"),
	})
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, svc.Corpus)
	assert.NotNil(t, svc.Units)
	assert.NotNil(t, svc.Orchestrator)
}

func TestBootstrap_InvalidProvider(t *testing.T) {
	dir := t.TempDir()

	_, _, err := bootstrap(context.Background(), cli.Options{ConfigDir: dir, Provider: "gemini"})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
