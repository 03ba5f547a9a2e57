// Package normalisers provides pure functions that canonicalise values
// produced by external services before they are persisted.
//
// Each sub-package handles one kind of value. Normalisers never perform
// I/O and never fail.
package normalisers
