package driving

import (
	"context"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// NameService browses and curates extracted names.
type NameService interface {
	// List returns distinct names matching the filter, ordered by type then name.
	List(ctx context.Context, filter domain.NameFilter) ([]domain.ExtractedName, error)

	// UnitsForName returns the units a name was extracted from.
	UnitsForName(ctx context.Context, name string) ([]domain.UnitReference, error)

	// Delete removes every record of a name and returns the count removed.
	// Units stay processed.
	Delete(ctx context.Context, name string) (int, error)
}
