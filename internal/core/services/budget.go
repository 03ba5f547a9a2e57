package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/core/ports/driving"
	"github.com/custodia-labs/nomina/internal/logger"
)

// Ensure BudgetTracker implements the interface.
var _ driving.BudgetService = (*BudgetTracker)(nil)

// BudgetTracker holds today's consumption snapshot and compares it with
// the configured thresholds. It is fail-open: until a refresh succeeds the
// total is zero and processing may proceed.
type BudgetTracker struct {
	accountant driven.UsageAccountant
	thresholds domain.BudgetThresholds
	now        func() time.Time

	mu       sync.RWMutex
	snapshot domain.BudgetSnapshot
}

// NewBudgetTracker creates a tracker. accountant may be nil, in which case
// Refresh reports domain.ErrAccountingUnavailable and the budget never blocks.
func NewBudgetTracker(accountant driven.UsageAccountant, thresholds domain.BudgetThresholds) (*BudgetTracker, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &BudgetTracker{
		accountant: accountant,
		thresholds: thresholds,
		now:        time.Now,
	}, nil
}

// Refresh queries usage since UTC midnight and replaces the snapshot.
// On failure the previous snapshot is kept.
func (t *BudgetTracker) Refresh(ctx context.Context) (*domain.BudgetSnapshot, error) {
	if t.accountant == nil {
		return nil, domain.ErrAccountingUnavailable
	}

	now := t.now()
	since := domain.UTCMidnight(now)
	report, err := t.accountant.DailyUsage(ctx, since)
	if err != nil {
		logger.Warn("budget refresh failed, keeping previous snapshot: %v", err)
		return nil, fmt.Errorf("refresh budget: %w", wrapAccounting(err))
	}

	snap := domain.SnapshotFromReport(report, since, now)

	t.mu.Lock()
	t.snapshot = snap
	t.mu.Unlock()

	logger.Debug("budget: %d tokens (%d requests) since %s", snap.TotalUnits, snap.RequestCount, since.Format(time.DateOnly))
	return &snap, nil
}

// Snapshot returns the last successful snapshot.
func (t *BudgetTracker) Snapshot() domain.BudgetSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot
}

// Thresholds returns the configured thresholds.
func (t *BudgetTracker) Thresholds() domain.BudgetThresholds {
	return t.thresholds
}

// CurrentTotal returns the consumption of the last snapshot.
func (t *BudgetTracker) CurrentTotal() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot.TotalUnits
}

// IsAtWarning is true when warning <= total < limit.
func (t *BudgetTracker) IsAtWarning() bool {
	total := t.CurrentTotal()
	return total >= t.thresholds.Warning && total < t.thresholds.Limit
}

// IsAtLimit is true when total >= limit.
func (t *BudgetTracker) IsAtLimit() bool {
	return t.CurrentTotal() >= t.thresholds.Limit
}

// CanProceed reports whether another extraction call may be made.
func (t *BudgetTracker) CanProceed() bool {
	return !t.IsAtLimit()
}

// wrapAccounting ensures err matches domain.ErrAccountingService.
func wrapAccounting(err error) error {
	if errors.Is(err, domain.ErrAccountingService) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrAccountingService, err)
}
