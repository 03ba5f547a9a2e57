package driven

import (
	"context"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// ProcessingStore persists which units have been processed and the names
// extracted from them.
//
// Invariants:
//   - a unit has zero or one ProcessedUnit
//   - Commit and Clear are atomic: readers see all of a unit's names or none
//   - names exist only for processed units
type ProcessingStore interface {
	// IsProcessed reports whether a ProcessedUnit exists for ref.
	IsProcessed(ctx context.Context, ref domain.UnitReference) (bool, error)

	// GetNames returns the names stored for ref. Empty when unprocessed.
	GetNames(ctx context.Context, ref domain.UnitReference) ([]domain.ExtractedName, error)

	// Commit atomically records ref as processed with its names.
	// Returns domain.ErrAlreadyProcessed, with no effect, if ref was already processed.
	Commit(ctx context.Context, ref domain.UnitReference, names []domain.ExtractedName) error

	// Clear atomically removes ref's names and ProcessedUnit. No-op if absent.
	Clear(ctx context.Context, ref domain.UnitReference) error

	// ListDistinctNames returns every distinct (name, type), ordered by type then name.
	ListDistinctNames(ctx context.Context) ([]domain.ExtractedName, error)

	// ListUnitsForName returns the units a name was extracted from.
	ListUnitsForName(ctx context.Context, name string) ([]domain.UnitReference, error)

	// DeleteName removes every record of name and returns how many were removed.
	// ProcessedUnit rows are left untouched.
	DeleteName(ctx context.Context, name string) (int, error)

	// ListProcessed returns every ProcessedUnit of a collection and version.
	ListProcessed(ctx context.Context, collectionKey, version string) ([]domain.ProcessedUnit, error)
}
