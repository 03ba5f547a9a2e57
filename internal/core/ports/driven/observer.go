package driven

import "github.com/custodia-labs/nomina/internal/core/domain"

// SweepObserver receives sweep events for instrumentation.
// Implementations must not block.
type SweepObserver interface {
	// UnitProcessed is called after a unit was handled successfully.
	UnitProcessed(result *domain.ProcessResult)

	// UnitFailed is called after a unit failed.
	UnitFailed(ref domain.UnitReference, err error)

	// BudgetRefreshed is called after a successful budget refresh.
	BudgetRefreshed(snapshot domain.BudgetSnapshot)

	// SweepFinished is called once per group or collection sweep.
	SweepFinished(scope string, outcome domain.SweepOutcome)
}
