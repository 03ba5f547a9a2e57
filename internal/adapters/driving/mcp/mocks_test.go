package mcp

import (
	"context"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// mockNameService is a mock implementation of driving.NameService.
type mockNameService struct {
	names      []domain.ExtractedName
	refs       []domain.UnitReference
	lastFilter domain.NameFilter
	err        error
}

func (m *mockNameService) List(_ context.Context, filter domain.NameFilter) ([]domain.ExtractedName, error) {
	m.lastFilter = filter
	return m.names, m.err
}

func (m *mockNameService) UnitsForName(_ context.Context, _ string) ([]domain.UnitReference, error) {
	return m.refs, m.err
}

func (m *mockNameService) Delete(_ context.Context, _ string) (int, error) {
	return 0, m.err
}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	collections []domain.Collection
	units       []domain.UnitStatus
	stats       map[string]*domain.CollectionStats
	err         error
}

func (m *mockCorpusService) ListCollections(_ context.Context) ([]domain.Collection, error) {
	return m.collections, m.err
}

func (m *mockCorpusService) GetCollection(_ context.Context, key string) (*domain.Collection, error) {
	for i := range m.collections {
		if m.collections[i].Key == key {
			return &m.collections[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCorpusService) ListUnits(_ context.Context, _ string, _ int) ([]domain.UnitStatus, error) {
	return m.units, m.err
}

func (m *mockCorpusService) GroupStats(_ context.Context, _ string, _ int) (*domain.GroupStats, error) {
	return nil, m.err
}

func (m *mockCorpusService) CollectionStats(_ context.Context, key string) (*domain.CollectionStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	stats, ok := m.stats[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return stats, nil
}

// mockBudgetService is a mock implementation of driving.BudgetService.
type mockBudgetService struct {
	snapshot   domain.BudgetSnapshot
	refreshed  domain.BudgetSnapshot
	refreshErr error
	refreshes  int
}

func (m *mockBudgetService) Refresh(_ context.Context) (*domain.BudgetSnapshot, error) {
	m.refreshes++
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	m.snapshot = m.refreshed
	return &m.snapshot, nil
}

func (m *mockBudgetService) Snapshot() domain.BudgetSnapshot { return m.snapshot }

func (m *mockBudgetService) Thresholds() domain.BudgetThresholds {
	return domain.BudgetThresholds{Warning: 80, Limit: 100}
}

func (m *mockBudgetService) CurrentTotal() int64 { return m.snapshot.TotalUnits }

func (m *mockBudgetService) IsAtWarning() bool {
	return m.snapshot.TotalUnits >= 80 && m.snapshot.TotalUnits < 100
}

func (m *mockBudgetService) IsAtLimit() bool { return m.snapshot.TotalUnits >= 100 }

func (m *mockBudgetService) CanProceed() bool { return !m.IsAtLimit() }

func validPorts() *Ports {
	return &Ports{Names: &mockNameService{}, Corpus: &mockCorpusService{}}
}
