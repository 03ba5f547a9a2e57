package mcp

import (
	"github.com/custodia-labs/nomina/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Names lists and resolves extracted names.
	Names driving.NameService

	// Corpus browses collections with their processing state.
	Corpus driving.CorpusService

	// Budget reports today's consumption. Optional.
	Budget driving.BudgetService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Names == nil {
		return ErrMissingNameService
	}
	if p.Corpus == nil {
		return ErrMissingCorpusService
	}
	return nil
}
