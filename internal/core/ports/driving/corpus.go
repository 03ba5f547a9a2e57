package driving

import (
	"context"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// CorpusService browses the corpus annotated with processing state.
type CorpusService interface {
	// ListCollections returns the non-excluded collections.
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// GetCollection returns one collection.
	GetCollection(ctx context.Context, key string) (*domain.Collection, error)

	// ListUnits returns the units of a group with their processed flag and names.
	ListUnits(ctx context.Context, key string, group int) ([]domain.UnitStatus, error)

	// GroupStats returns processing progress of one group.
	GroupStats(ctx context.Context, key string, group int) (*domain.GroupStats, error)

	// CollectionStats returns processing progress of a collection and its groups.
	CollectionStats(ctx context.Context, key string) (*domain.CollectionStats, error)
}
