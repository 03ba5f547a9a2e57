package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// UsageAccountant reports extraction service consumption.
type UsageAccountant interface {
	// DailyUsage returns every usage bucket recorded since the given instant.
	// Failures wrap domain.ErrAccountingService; HTTP failures are *domain.AccountingError.
	DailyUsage(ctx context.Context, since time.Time) (domain.UsageReport, error)
}
