package driving

import (
	"context"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// BudgetService exposes today's consumption against the configured thresholds.
type BudgetService interface {
	// Refresh queries the accounting service and replaces the snapshot.
	// On failure the previous snapshot is kept.
	Refresh(ctx context.Context) (*domain.BudgetSnapshot, error)

	// Snapshot returns the last successful snapshot.
	Snapshot() domain.BudgetSnapshot

	// Thresholds returns the configured thresholds.
	Thresholds() domain.BudgetThresholds

	// CurrentTotal returns the consumption of the last snapshot.
	CurrentTotal() int64

	// IsAtWarning is true when warning <= total < limit.
	IsAtWarning() bool

	// IsAtLimit is true when total >= limit.
	IsAtLimit() bool

	// CanProceed is the negation of IsAtLimit.
	CanProceed() bool
}
