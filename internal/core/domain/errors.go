package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or name type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Processing Errors.

	// ErrUnitNotFound indicates the unit text could not be resolved from the corpus.
	// It is fatal to that unit only; sweeps log it and continue.
	ErrUnitNotFound = errors.New("unit not found")

	// ErrAlreadyProcessed indicates a commit raced with another commit for the same unit.
	// Callers treat it as success and read back the stored names.
	ErrAlreadyProcessed = errors.New("unit already processed")

	// Extraction Errors.

	// ErrExtractionService indicates a transport, auth or model failure of the
	// extraction service. The unit stays unprocessed.
	ErrExtractionService = errors.New("extraction service error")

	// ErrExtractionParse indicates the service answered but the payload was malformed.
	// It is downgraded to "zero names" and never propagated out of the extractor.
	ErrExtractionParse = errors.New("extraction payload malformed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrBudgetExceeded indicates today's consumption reached the limit
	// before an extraction call. Nothing was committed or cleared.
	ErrBudgetExceeded = errors.New("daily budget limit reached")

	// Accounting Errors.

	// ErrAccountingService indicates the usage endpoint failed.
	// Non-fatal: the previous budget snapshot is retained.
	ErrAccountingService = errors.New("accounting service error")

	// ErrAccountingUnavailable indicates no usage endpoint is configured.
	// Budget tracking stays fail-open.
	ErrAccountingUnavailable = errors.New("accounting service unavailable")
)

// AccountingError carries the HTTP status and body of a failed usage request.
type AccountingError struct {
	Status int
	Body   string
}

// Error implements error.
func (e *AccountingError) Error() string {
	return fmt.Sprintf("usage API error: status %d: %s", e.Status, e.Body)
}

// Unwrap allows errors.Is(err, ErrAccountingService).
func (e *AccountingError) Unwrap() error {
	return ErrAccountingService
}
