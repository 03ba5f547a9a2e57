package driven

import (
	"context"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// Corpus provides read-only access to the collections of the corpus.
// Unknown collections return domain.ErrNotFound.
type Corpus interface {
	// Version is the corpus edition stored in every unit reference.
	Version() string

	// ListCollections returns every collection that is not excluded, in canonical order.
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// GetCollection returns one collection.
	GetCollection(ctx context.Context, key string) (*domain.Collection, error)

	// ListGroupUnits returns the units of a group in ascending order.
	ListGroupUnits(ctx context.Context, key string, group int) ([]domain.CorpusUnit, error)

	// GetUnitText returns the text of one unit. ok is false when the unit does not exist.
	GetUnitText(ctx context.Context, key string, group, unit int) (text string, ok bool, err error)

	// CountUnitsInGroup returns the number of units in a group.
	CountUnitsInGroup(ctx context.Context, key string, group int) (int, error)
}
