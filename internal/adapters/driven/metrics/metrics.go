// Package metrics exposes extraction and sweep activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.SweepObserver = (*Metrics)(nil)

// Metrics holds the nomina collectors.
type Metrics struct {
	extractions        *prometheus.CounterVec
	extractionDuration prometheus.Histogram
	unitsProcessed     *prometheus.CounterVec
	unitFailures       *prometheus.CounterVec
	namesFound         *prometheus.CounterVec
	sweeps             *prometheus.CounterVec
	budgetTokens       prometheus.Gauge
	budgetRequests     prometheus.Gauge
	llmTokens          *prometheus.CounterVec
	llmTruncated       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nomina_extractions_total",
			Help: "Extraction service calls by provider and result.",
		}, []string{"provider", "result"}),
		extractionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nomina_extraction_seconds",
			Help:    "Latency of extraction service calls.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		unitsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nomina_units_processed_total",
			Help: "Units handled by sweeps, by how they were resolved.",
		}, []string{"status"}),
		unitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nomina_unit_failures_total",
			Help: "Units that failed during sweeps, by error class.",
		}, []string{"reason"}),
		namesFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nomina_names_committed_total",
			Help: "Names committed by sweeps, by type.",
		}, []string{"type"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nomina_sweeps_total",
			Help: "Finished sweeps by scope and outcome.",
		}, []string{"scope", "outcome"}),
		budgetTokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nomina_budget_tokens",
			Help: "Tokens consumed since UTC midnight at the last refresh.",
		}),
		budgetRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nomina_budget_requests",
			Help: "Model requests since UTC midnight at the last refresh.",
		}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nomina_llm_tokens_total",
			Help: "Tokens reported by the model per call, by model and direction.",
		}, []string{"model", "direction"}),
		llmTruncated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nomina_llm_truncated_total",
			Help: "Replies cut at the token limit, by model.",
		}, []string{"model"}),
	}

	reg.MustRegister(
		m.extractions, m.extractionDuration,
		m.unitsProcessed, m.unitFailures, m.namesFound,
		m.sweeps, m.budgetTokens, m.budgetRequests,
		m.llmTokens, m.llmTruncated,
	)
	return m
}

// UnitProcessed counts a handled unit and the names it committed.
func (m *Metrics) UnitProcessed(result *domain.ProcessResult) {
	if result == nil {
		return
	}
	switch {
	case result.AlreadyProcessed:
		m.unitsProcessed.WithLabelValues("already_processed").Inc()
		return
	case result.Skipped:
		m.unitsProcessed.WithLabelValues("skipped").Inc()
	default:
		m.unitsProcessed.WithLabelValues("extracted").Inc()
	}
	for _, n := range result.Names {
		m.namesFound.WithLabelValues(n.Type.String()).Inc()
	}
}

// UnitFailed counts a failed unit.
func (m *Metrics) UnitFailed(_ domain.UnitReference, err error) {
	m.unitFailures.WithLabelValues(failureReason(err)).Inc()
}

// BudgetRefreshed records the latest snapshot.
func (m *Metrics) BudgetRefreshed(snapshot domain.BudgetSnapshot) {
	m.budgetTokens.Set(float64(snapshot.TotalUnits))
	m.budgetRequests.Set(float64(snapshot.RequestCount))
}

// SweepFinished counts a finished sweep.
func (m *Metrics) SweepFinished(scope string, outcome domain.SweepOutcome) {
	m.sweeps.WithLabelValues(scope, outcome.String()).Inc()
}

// WrapExtractor times and counts every call made through ex.
func (m *Metrics) WrapExtractor(ex driven.Extractor) driven.Extractor {
	return &instrumentedExtractor{next: ex, m: m}
}

type instrumentedExtractor struct {
	next driven.Extractor
	m    *Metrics
}

func (e *instrumentedExtractor) Extract(ctx context.Context, req driven.ExtractionRequest) ([]domain.ExtractedName, error) {
	start := time.Now()
	names, err := e.next.Extract(ctx, req)
	e.m.extractionDuration.Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	e.m.extractions.WithLabelValues(e.next.Provider().String(), result).Inc()
	return names, err
}

func (e *instrumentedExtractor) Provider() domain.AIProvider {
	return e.next.Provider()
}

// WrapLLM counts the tokens every reply of svc reports.
func (m *Metrics) WrapLLM(svc driven.LLMService) driven.LLMService {
	return &instrumentedLLM{LLMService: svc, m: m}
}

type instrumentedLLM struct {
	driven.LLMService
	m *Metrics
}

func (l *instrumentedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (*driven.ChatResponse, error) {
	resp, err := l.LLMService.Chat(ctx, messages, opts)
	if err != nil {
		return nil, err
	}
	model := l.ModelName()
	l.m.llmTokens.WithLabelValues(model, "input").Add(float64(resp.Usage.Input))
	l.m.llmTokens.WithLabelValues(model, "output").Add(float64(resp.Usage.Output))
	if resp.Truncated {
		l.m.llmTruncated.WithLabelValues(model).Inc()
	}
	return resp, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnitNotFound):
		return "unit_not_found"
	case errors.Is(err, domain.ErrExtractionService):
		return "extraction_service"
	default:
		return "other"
	}
}
