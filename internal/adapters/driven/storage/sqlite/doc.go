// Package sqlite provides the SQLite implementation of driven.ProcessingStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
//   - processed_units: one row per processed unit, keyed by the unit reference
//   - extracted_names: names attached to a processed unit
//
// # Data Location
//
// By default, the database is stored at ~/.nomina/data/nomina.db
//
// # Atomicity
//
// Every mutation runs inside one transaction (see withTx), so a unit's
// processed marker and its names are committed or rolled back together.
// WAL mode lets readers proceed while a sweep writes.
package sqlite
