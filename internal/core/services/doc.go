// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The UnitProcessor owns the per-unit state transition, the Orchestrator
// sweeps groups and collections under the BudgetTracker's limit, and the
// remaining services browse the corpus, curate names and manage settings.
package services
