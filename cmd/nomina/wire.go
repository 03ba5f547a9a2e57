package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/nomina/internal/adapters/driven/ai"
	"github.com/custodia-labs/nomina/internal/adapters/driven/config/file"
	"github.com/custodia-labs/nomina/internal/adapters/driven/corpus/jsonfile"
	"github.com/custodia-labs/nomina/internal/adapters/driven/metrics"
	"github.com/custodia-labs/nomina/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/nomina/internal/adapters/driving/cli"
	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/core/services"
	"github.com/custodia-labs/nomina/internal/logger"
	"github.com/custodia-labs/nomina/internal/prefilter"
)

// providerKeyEnv names the environment variable holding each provider's API key.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// metricsShutdownTimeout bounds the metrics server shutdown.
const metricsShutdownTimeout = 2 * time.Second

// bootstrap wires adapters into services for one command invocation.
// Missing configuration leaves the matching services nil so commands can
// report what to fix.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	configDir := opts.ConfigDir
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".nomina")
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening prompts: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := applyOverrides(settings, opts); err != nil {
		return nil, nil, err
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	closers = append(closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing database: %v", err)
		}
	})
	processing := store.ProcessingStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if opts.MetricsAddr != "" {
		closers = append(closers, serveMetrics(opts.MetricsAddr, reg))
	}

	out := &cli.Services{
		Names:    services.NewNameService(processing),
		Settings: settingsService,
	}

	accountant, err := ai.CreateUsageAccountant(&settings.Usage)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("creating usage accountant: %w", err)
	}
	budget, err := services.NewBudgetTracker(accountant, settings.Budget.Thresholds)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	out.Budget = budget

	if settings.Corpus.Dir == "" {
		logger.Debug("corpus.dir not set, corpus commands are unavailable")
		return out, cleanup, nil
	}

	corpus, err := jsonfile.New(jsonfile.Config{
		Dir:     settings.Corpus.Dir,
		Version: settings.Corpus.Version,
		Exclude: settings.Corpus.Exclude,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("opening corpus: %w", err)
	}

	filter, err := prefilter.NewFromFile(settings.Filter.LexiconPath)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("loading lexicon: %w", err)
	}

	var extractor driven.Extractor
	result, err := ai.CreateExtractor(&settings.LLM, prompts, ai.WithLLMMiddleware(m.WrapLLM))
	switch {
	case errors.Is(err, domain.ErrLLMUnavailable):
		logger.Debug("extraction disabled: %v", err)
	case err != nil:
		cleanup()
		return nil, nil, err
	default:
		closers = append(closers, result.Close)
		extractor = m.WrapExtractor(result.Extractor)
	}

	processor := services.NewUnitProcessor(processing, corpus, filter, extractor)
	processor.SetBudget(budget)
	orchestrator := services.NewOrchestrator(corpus, processing, processor, budget, settings.Budget.RefreshEvery)
	orchestrator.SetObserver(m)

	out.Corpus = services.NewCorpusService(corpus, processing)
	out.Units = processor
	out.Orchestrator = orchestrator

	return out, cleanup, nil
}

// applyOverrides applies per-run flags on top of stored settings.
// Overrides are never saved.
func applyOverrides(settings *domain.AppSettings, opts cli.Options) error {
	if opts.CorpusDir != "" {
		settings.Corpus.Dir = opts.CorpusDir
	}

	if opts.Provider == "" {
		return nil
	}
	provider := domain.AIProvider(opts.Provider)
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrUnsupportedType, opts.Provider)
	}
	if provider == settings.LLM.Provider {
		return nil
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = domain.DefaultLLMModels()[provider]
	settings.LLM.BaseURL = ""
	settings.LLM.APIKey = ""
	if env, ok := providerKeyEnv[provider]; ok {
		settings.LLM.APIKey = os.Getenv(env)
	}
	return nil
}

// serveMetrics exposes reg on addr until the returned function is called.
func serveMetrics(addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics listening on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown: %v", err)
		}
	}
}
