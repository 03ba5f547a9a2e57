package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/core/ports/driving"
	"github.com/custodia-labs/nomina/internal/logger"
)

// Ensure NameService implements the interface.
var _ driving.NameService = (*NameService)(nil)

// NameService browses and curates extracted names.
type NameService struct {
	store driven.ProcessingStore
}

// NewNameService creates a new name service.
func NewNameService(store driven.ProcessingStore) *NameService {
	return &NameService{store: store}
}

// List returns distinct names matching the filter, ordered by type then name.
func (s *NameService) List(ctx context.Context, filter domain.NameFilter) ([]domain.ExtractedName, error) {
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, fmt.Errorf("%w: name type %q", domain.ErrInvalidInput, filter.Type)
	}

	all, err := s.store.ListDistinctNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}

	matched := make([]domain.ExtractedName, 0, len(all))
	for _, n := range all {
		if filter.Matches(n) {
			matched = append(matched, n)
		}
	}
	return matched, nil
}

// UnitsForName returns the units a name was extracted from.
func (s *NameService) UnitsForName(ctx context.Context, name string) ([]domain.UnitReference, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	return s.store.ListUnitsForName(ctx, name)
}

// Delete removes every record of a name. Units stay processed.
func (s *NameService) Delete(ctx context.Context, name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	n, err := s.store.DeleteName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("delete name %q: %w", name, err)
	}
	logger.Info("deleted %d records of %q", n, name)
	return n, nil
}
