package driving

import (
	"context"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// UnitService processes single units.
type UnitService interface {
	// Process resolves a unit from the corpus and processes it.
	// Returns domain.ErrUnitNotFound before any mutation when the unit does not exist.
	Process(ctx context.Context, ref domain.UnitReference, force bool) (*domain.ProcessResult, error)

	// ProcessText processes a unit whose text the caller already holds.
	ProcessText(ctx context.Context, ref domain.UnitReference, text, precedingContext string, force bool) (*domain.ProcessResult, error)
}

// Orchestrator sweeps groups and collections under the consumption budget.
type Orchestrator interface {
	// SweepGroup processes every unprocessed unit of a group in ascending order.
	SweepGroup(ctx context.Context, collectionKey string, group int, opts domain.SweepOptions) (*domain.GroupSweepResult, error)

	// SweepCollection processes every group of a collection in ascending order.
	SweepCollection(ctx context.Context, collectionKey string, opts domain.SweepOptions) (*domain.CollectionSweepResult, error)
}
