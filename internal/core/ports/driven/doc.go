// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Corpus: Read-only access to collections, groups and unit text
//   - ProcessingStore: Idempotent persistence of processed units and names
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Extractor: Name extraction service. Without it, only cached results and
//     filtered skips can be produced.
//   - LLMService: Chat model the Extractor is built on.
//   - UsageAccountant: Daily consumption accounting. Without it, the budget
//     stays fail-open.
//   - SweepObserver: Instrumentation of sweeps (metrics).
//   - PromptStore: Editable prompt templates. Without it, defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
