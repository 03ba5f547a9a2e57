package driven

import (
	"context"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// ExtractionRequest is the input of one extraction call.
type ExtractionRequest struct {
	// Text is the unit text to extract names from.
	Text string

	// PrecedingContext is the text of the previous unit in the same group.
	// It is reference-only: names found only there must not be returned.
	PrecedingContext string
}

// Extractor asks an external service for the proper names of a unit.
//
// Errors:
//   - transport, auth or model failures wrap domain.ErrExtractionService
//   - malformed payloads are logged and yield an empty list with a nil error
type Extractor interface {
	// Extract returns the raw names found in req.Text. Results are not normalised.
	Extract(ctx context.Context, req ExtractionRequest) ([]domain.ExtractedName, error)

	// Provider identifies the configured provider variant.
	Provider() domain.AIProvider
}
