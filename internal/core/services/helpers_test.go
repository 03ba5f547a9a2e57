package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

const testVersion = "rv1960"

// --- Corpus ---

// fakeCorpus serves collections from memory. groups[key][g-1][u-1] is the unit text.
type fakeCorpus struct {
	collections []domain.Collection
	groups      map[string][][]string
	listErr     error
}

func newFakeCorpus() *fakeCorpus {
	return &fakeCorpus{groups: make(map[string][][]string)}
}

func (c *fakeCorpus) add(key string, groups ...[]string) *fakeCorpus {
	units := 0
	for _, g := range groups {
		units += len(g)
	}
	c.collections = append(c.collections, domain.Collection{
		Key:         key,
		DisplayName: key,
		Number:      len(c.collections) + 1,
		GroupCount:  len(groups),
		UnitCount:   units,
	})
	c.groups[key] = groups
	return c
}

func (c *fakeCorpus) Version() string { return testVersion }

func (c *fakeCorpus) ListCollections(_ context.Context) ([]domain.Collection, error) {
	return c.collections, nil
}

func (c *fakeCorpus) GetCollection(_ context.Context, key string) (*domain.Collection, error) {
	for i := range c.collections {
		if c.collections[i].Key == key {
			coll := c.collections[i]
			return &coll, nil
		}
	}
	return nil, fmt.Errorf("collection %s: %w", key, domain.ErrNotFound)
}

func (c *fakeCorpus) ListGroupUnits(_ context.Context, key string, group int) ([]domain.CorpusUnit, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	groups, ok := c.groups[key]
	if !ok || group < 1 || group > len(groups) {
		return nil, domain.ErrNotFound
	}
	units := make([]domain.CorpusUnit, 0, len(groups[group-1]))
	for i, text := range groups[group-1] {
		units = append(units, domain.CorpusUnit{Number: i + 1, Text: text})
	}
	return units, nil
}

func (c *fakeCorpus) GetUnitText(_ context.Context, key string, group, unit int) (string, bool, error) {
	groups, ok := c.groups[key]
	if !ok || group < 1 || group > len(groups) {
		return "", false, nil
	}
	if unit < 1 || unit > len(groups[group-1]) {
		return "", false, nil
	}
	return groups[group-1][unit-1], true, nil
}

func (c *fakeCorpus) CountUnitsInGroup(_ context.Context, key string, group int) (int, error) {
	groups, ok := c.groups[key]
	if !ok || group < 1 || group > len(groups) {
		return 0, nil
	}
	return len(groups[group-1]), nil
}

// --- Extractor ---

// countingExtractor answers from a text-keyed table and counts calls.
type countingExtractor struct {
	mu        sync.Mutex
	calls     int
	requests  []driven.ExtractionRequest
	responses map[string][]domain.ExtractedName
	failures  map[string]error
}

func newCountingExtractor() *countingExtractor {
	return &countingExtractor{
		responses: make(map[string][]domain.ExtractedName),
		failures:  make(map[string]error),
	}
}

func (e *countingExtractor) on(text string, names ...domain.ExtractedName) *countingExtractor {
	e.responses[text] = names
	return e
}

func (e *countingExtractor) failOn(text string, err error) *countingExtractor {
	e.failures[text] = err
	return e
}

func (e *countingExtractor) Extract(_ context.Context, req driven.ExtractionRequest) ([]domain.ExtractedName, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.requests = append(e.requests, req)
	if err, ok := e.failures[req.Text]; ok {
		return nil, err
	}
	return e.responses[req.Text], nil
}

func (e *countingExtractor) Provider() domain.AIProvider { return domain.AIProviderOpenAI }

func (e *countingExtractor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// --- Budget ---

// fakeBudget allows a fixed number of CanProceed calls, then reports the limit.
// allow < 0 never blocks.
type fakeBudget struct {
	allow      int
	checks     int
	refreshes  int
	refreshErr error
	total      int64
	warning    bool
}

func unlimitedBudget() *fakeBudget { return &fakeBudget{allow: -1} }

func (b *fakeBudget) Refresh(_ context.Context) (*domain.BudgetSnapshot, error) {
	b.refreshes++
	if b.refreshErr != nil {
		return nil, b.refreshErr
	}
	snap := domain.BudgetSnapshot{TotalUnits: b.total, FetchedAt: time.Now()}
	return &snap, nil
}

func (b *fakeBudget) Snapshot() domain.BudgetSnapshot {
	return domain.BudgetSnapshot{TotalUnits: b.total}
}

func (b *fakeBudget) Thresholds() domain.BudgetThresholds { return domain.DefaultBudgetThresholds() }

func (b *fakeBudget) CurrentTotal() int64 { return b.total }

func (b *fakeBudget) IsAtWarning() bool { return b.warning }

func (b *fakeBudget) IsAtLimit() bool { return b.allow >= 0 && b.checks >= b.allow }

func (b *fakeBudget) CanProceed() bool {
	b.checks++
	return b.allow < 0 || b.checks <= b.allow
}

// --- Accountant ---

type fakeAccountant struct {
	report domain.UsageReport
	err    error
	calls  int
	since  time.Time
}

func (a *fakeAccountant) DailyUsage(_ context.Context, since time.Time) (domain.UsageReport, error) {
	a.calls++
	a.since = since
	return a.report, a.err
}

// --- Observer ---

type recordingObserver struct {
	processed []*domain.ProcessResult
	failed    []domain.UnitReference
	refreshed int
	finished  []string
}

func (o *recordingObserver) UnitProcessed(r *domain.ProcessResult) {
	o.processed = append(o.processed, r)
}

func (o *recordingObserver) UnitFailed(ref domain.UnitReference, _ error) {
	o.failed = append(o.failed, ref)
}

func (o *recordingObserver) BudgetRefreshed(domain.BudgetSnapshot) { o.refreshed++ }

func (o *recordingObserver) SweepFinished(scope string, outcome domain.SweepOutcome) {
	o.finished = append(o.finished, scope+":"+outcome.String())
}

// --- Helpers ---

func ref(key string, group, unit int) domain.UnitReference {
	return domain.UnitReference{CollectionKey: key, Group: group, Unit: unit, Version: testVersion}
}

func person(name string) domain.ExtractedName {
	return domain.ExtractedName{Name: name, Type: domain.NameTypePerson}
}

func place(name string) domain.ExtractedName {
	return domain.ExtractedName{Name: name, Type: domain.NameTypePlace}
}
