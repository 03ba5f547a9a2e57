package domain

import (
	"fmt"
	"time"
)

// Default budget thresholds, in tokens consumed since UTC midnight.
const (
	DefaultWarningTokens int64 = 2_300_000
	DefaultLimitTokens   int64 = 2_500_000

	// DefaultRefreshEvery is how many newly processed units pass between budget refreshes.
	DefaultRefreshEvery = 10
)

// BudgetThresholds configures the warning and hard limit of the budget.
type BudgetThresholds struct {
	// Warning is the consumption at which operators are warned.
	Warning int64

	// Limit is the consumption at which no further extraction calls are made.
	Limit int64
}

// DefaultBudgetThresholds returns the default thresholds.
func DefaultBudgetThresholds() BudgetThresholds {
	return BudgetThresholds{
		Warning: DefaultWarningTokens,
		Limit:   DefaultLimitTokens,
	}
}

// Validate checks that warning < limit.
func (t BudgetThresholds) Validate() error {
	if t.Limit <= 0 {
		return fmt.Errorf("%w: budget limit must be positive", ErrInvalidInput)
	}
	if t.Warning < 0 || t.Warning >= t.Limit {
		return fmt.Errorf("%w: budget warning (%d) must be below limit (%d)",
			ErrInvalidInput, t.Warning, t.Limit)
	}
	return nil
}

// UsageBucket is one accounting bucket returned by the usage endpoint.
type UsageBucket struct {
	InputCount   int64
	OutputCount  int64
	RequestCount int64
}

// UsageReport is the raw answer of the usage endpoint.
type UsageReport struct {
	Buckets []UsageBucket
}

// BudgetSnapshot is the in-memory view of today's consumption.
// It is never persisted.
type BudgetSnapshot struct {
	// AsOfDate is the UTC midnight the totals are counted from.
	AsOfDate time.Time

	InputUnits   int64
	OutputUnits  int64
	TotalUnits   int64
	RequestCount int64

	// FetchedAt is when the snapshot was taken. Zero means never refreshed.
	FetchedAt time.Time
}

// IsZero reports whether the snapshot has never been refreshed.
func (s BudgetSnapshot) IsZero() bool {
	return s.FetchedAt.IsZero()
}

// SnapshotFromReport sums every bucket of a usage report.
func SnapshotFromReport(report UsageReport, asOf, fetchedAt time.Time) BudgetSnapshot {
	snap := BudgetSnapshot{
		AsOfDate:  asOf,
		FetchedAt: fetchedAt,
	}
	for _, b := range report.Buckets {
		snap.InputUnits += b.InputCount
		snap.OutputUnits += b.OutputCount
		snap.RequestCount += b.RequestCount
	}
	snap.TotalUnits = snap.InputUnits + snap.OutputUnits
	return snap
}

// UTCMidnight returns the start of the UTC day containing t.
func UTCMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
