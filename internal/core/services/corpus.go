package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/core/ports/driving"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService browses the corpus annotated with processing state.
type CorpusService struct {
	corpus driven.Corpus
	store  driven.ProcessingStore
}

// NewCorpusService creates a new corpus service.
func NewCorpusService(corpus driven.Corpus, store driven.ProcessingStore) *CorpusService {
	return &CorpusService{
		corpus: corpus,
		store:  store,
	}
}

// ListCollections returns the non-excluded collections in canonical order.
func (s *CorpusService) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	return s.corpus.ListCollections(ctx)
}

// GetCollection returns one collection.
func (s *CorpusService) GetCollection(ctx context.Context, key string) (*domain.Collection, error) {
	return s.corpus.GetCollection(ctx, key)
}

// ListUnits returns the units of a group with their processed flag and names.
func (s *CorpusService) ListUnits(ctx context.Context, key string, group int) ([]domain.UnitStatus, error) {
	progress, err := loadCollectionProgress(ctx, s.corpus, s.store, key)
	if err != nil {
		return nil, err
	}
	if !progress.hasGroup(group) {
		return nil, fmt.Errorf("%w: %s group %d", domain.ErrNotFound, key, group)
	}

	units, err := s.corpus.ListGroupUnits(ctx, key, group)
	if err != nil {
		return nil, fmt.Errorf("list units %s %d: %w", key, group, err)
	}

	statuses := make([]domain.UnitStatus, 0, len(units))
	for _, u := range units {
		status := domain.UnitStatus{Unit: u, Names: []domain.ExtractedName{}}
		if progress.isDone(group, u.Number) {
			status.Processed = true
			found, err := s.store.GetNames(ctx, progress.ref(group, u.Number))
			if err != nil {
				return nil, fmt.Errorf("get names %s: %w", progress.ref(group, u.Number), err)
			}
			if found != nil {
				status.Names = found
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// GroupStats returns processing progress of one group.
func (s *CorpusService) GroupStats(ctx context.Context, key string, group int) (*domain.GroupStats, error) {
	progress, err := loadCollectionProgress(ctx, s.corpus, s.store, key)
	if err != nil {
		return nil, err
	}
	if !progress.hasGroup(group) {
		return nil, fmt.Errorf("%w: %s group %d", domain.ErrNotFound, key, group)
	}
	stats := progress.groupStats(group)
	return &stats, nil
}

// CollectionStats returns processing progress of a collection and its groups.
func (s *CorpusService) CollectionStats(ctx context.Context, key string) (*domain.CollectionStats, error) {
	progress, err := loadCollectionProgress(ctx, s.corpus, s.store, key)
	if err != nil {
		return nil, err
	}
	stats := progress.collectionStats()
	return &stats, nil
}
