package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

type stubExtractor struct {
	names []domain.ExtractedName
	err   error
}

func (s stubExtractor) Extract(context.Context, driven.ExtractionRequest) ([]domain.ExtractedName, error) {
	return s.names, s.err
}

func (s stubExtractor) Provider() domain.AIProvider { return domain.AIProviderOllama }

type stubLLM struct {
	resp *driven.ChatResponse
	err  error
}

func (s stubLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (*driven.ChatResponse, error) {
	return s.resp, s.err
}

func (s stubLLM) ModelName() string          { return "gemma3" }
func (s stubLLM) Ping(context.Context) error { return nil }
func (s stubLLM) Close() error               { return nil }

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.SweepFinished("group", domain.SweepCompleted)

	count, err := testutil.GatherAndCount(reg, "nomina_sweeps_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Panics(t, func() { New(reg) }, "double registration must fail")
}

func TestUnitProcessed(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.UnitProcessed(&domain.ProcessResult{Names: []domain.ExtractedName{
		{Name: "Pedro", Type: domain.NameTypePerson},
		{Name: "Galilea", Type: domain.NameTypePlace},
	}})
	m.UnitProcessed(&domain.ProcessResult{Skipped: true})
	m.UnitProcessed(&domain.ProcessResult{AlreadyProcessed: true, Names: []domain.ExtractedName{{Name: "X", Type: domain.NameTypePerson}}})
	m.UnitProcessed(nil)

	assert.InDelta(t, 1, testutil.ToFloat64(m.unitsProcessed.WithLabelValues("extracted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.unitsProcessed.WithLabelValues("skipped")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.unitsProcessed.WithLabelValues("already_processed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.namesFound.WithLabelValues("person")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.namesFound.WithLabelValues("place")), 0)
}

func TestUnitFailed_ClassifiesErrors(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ref := domain.UnitReference{CollectionKey: "juan", Group: 1, Unit: 1, Version: "rv1960"}

	m.UnitFailed(ref, fmt.Errorf("resolve: %w", domain.ErrUnitNotFound))
	m.UnitFailed(ref, fmt.Errorf("%w: timeout", domain.ErrExtractionService))
	m.UnitFailed(ref, errors.New("disk full"))

	for _, reason := range []string{"unit_not_found", "extraction_service", "other"} {
		assert.InDelta(t, 1, testutil.ToFloat64(m.unitFailures.WithLabelValues(reason)), 0, reason)
	}
}

func TestBudgetRefreshed(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.BudgetRefreshed(domain.BudgetSnapshot{TotalUnits: 1234, RequestCount: 7})

	assert.InDelta(t, 1234, testutil.ToFloat64(m.budgetTokens), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(m.budgetRequests), 0)
}

func TestWrapExtractor(t *testing.T) {
	m := New(prometheus.NewRegistry())

	ok := m.WrapExtractor(stubExtractor{names: []domain.ExtractedName{{Name: "Juan", Type: domain.NameTypePerson}}})
	names, err := ok.Extract(context.Background(), driven.ExtractionRequest{Text: "Juan"})
	require.NoError(t, err)
	assert.Len(t, names, 1)
	assert.Equal(t, domain.AIProviderOllama, ok.Provider())

	failing := m.WrapExtractor(stubExtractor{err: domain.ErrExtractionService})
	_, err = failing.Extract(context.Background(), driven.ExtractionRequest{Text: "x"})
	assert.ErrorIs(t, err, domain.ErrExtractionService)

	assert.InDelta(t, 1, testutil.ToFloat64(m.extractions.WithLabelValues("ollama", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.extractions.WithLabelValues("ollama", "error")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.extractionDuration))
}

func TestWrapLLM_CountsTokens(t *testing.T) {
	m := New(prometheus.NewRegistry())
	svc := m.WrapLLM(stubLLM{resp: &driven.ChatResponse{
		Content:   "{}",
		Usage:     driven.TokenUsage{Input: 150, Output: 12},
		Truncated: true,
	}})

	resp, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "{}", resp.Content)
	_, err = svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)

	assert.InDelta(t, 300, testutil.ToFloat64(m.llmTokens.WithLabelValues("gemma3", "input")), 0)
	assert.InDelta(t, 24, testutil.ToFloat64(m.llmTokens.WithLabelValues("gemma3", "output")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.llmTruncated.WithLabelValues("gemma3")), 0)
	assert.Equal(t, "gemma3", svc.ModelName())
}

func TestWrapLLM_ErrorsAreNotCounted(t *testing.T) {
	m := New(prometheus.NewRegistry())
	svc := m.WrapLLM(stubLLM{err: errors.New("status 500")})

	_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.Error(t, err)

	assert.InDelta(t, 0, testutil.ToFloat64(m.llmTokens.WithLabelValues("gemma3", "input")), 0)
}
