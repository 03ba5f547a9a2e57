package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBudgetThresholds_Validate(t *testing.T) {
	tests := []struct {
		name       string
		thresholds BudgetThresholds
		wantErr    bool
	}{
		{"defaults", DefaultBudgetThresholds(), false},
		{"warning equals limit", BudgetThresholds{Warning: 10, Limit: 10}, true},
		{"warning above limit", BudgetThresholds{Warning: 11, Limit: 10}, true},
		{"zero limit", BudgetThresholds{Warning: 0, Limit: 0}, true},
		{"negative warning", BudgetThresholds{Warning: -1, Limit: 10}, true},
		{"zero warning", BudgetThresholds{Warning: 0, Limit: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.thresholds.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSnapshotFromReport(t *testing.T) {
	asOf := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	fetched := asOf.Add(5 * time.Hour)
	report := UsageReport{Buckets: []UsageBucket{
		{InputCount: 1000, OutputCount: 200, RequestCount: 3},
		{InputCount: 500, OutputCount: 50, RequestCount: 1},
	}}

	snap := SnapshotFromReport(report, asOf, fetched)

	assert.Equal(t, int64(1500), snap.InputUnits)
	assert.Equal(t, int64(250), snap.OutputUnits)
	assert.Equal(t, int64(1750), snap.TotalUnits)
	assert.Equal(t, int64(4), snap.RequestCount)
	assert.Equal(t, asOf, snap.AsOfDate)
	assert.False(t, snap.IsZero())
}

func TestUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	at := time.Date(2026, 10, 18, 21, 30, 0, 0, loc) // 02:30 UTC on the 19th

	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), UTCMidnight(at))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 0, Percentage(0, 10))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 50, Percentage(1, 2))
	assert.Equal(t, 100, Percentage(25, 25))
}
