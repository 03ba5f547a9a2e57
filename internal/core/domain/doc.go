// Package domain defines the core business entities for Nomina.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - UnitReference: The composite key of a unit (verse) in the corpus
//   - ProcessedUnit: The fact that a unit has been processed
//   - ExtractedName: A typed proper name (person or place)
//   - BudgetSnapshot: Daily consumption of the extraction service
//   - Collection: A book of the corpus, made of groups (chapters)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
