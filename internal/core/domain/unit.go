package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultCorpusVersion is the corpus edition used when none is configured.
const DefaultCorpusVersion = "rv1960"

// UnitReference identifies a unit (verse) of the corpus.
// It is immutable and is used as the join key everywhere.
type UnitReference struct {
	// CollectionKey identifies the collection (book), e.g. "juan".
	CollectionKey string

	// Group is the 1-based group (chapter) number.
	Group int

	// Unit is the 1-based unit (verse) number within the group.
	Unit int

	// Version is the corpus edition, e.g. "rv1960". It may not contain '-'.
	Version string
}

// NewUnitReference creates a reference and validates it.
func NewUnitReference(collectionKey string, group, unit int, version string) (UnitReference, error) {
	ref := UnitReference{
		CollectionKey: collectionKey,
		Group:         group,
		Unit:          unit,
		Version:       version,
	}
	if err := ref.Validate(); err != nil {
		return UnitReference{}, err
	}
	return ref, nil
}

// String returns the stable key "<collection>-<group>-<unit>-<version>".
func (r UnitReference) String() string {
	return fmt.Sprintf("%s-%d-%d-%s", r.CollectionKey, r.Group, r.Unit, r.Version)
}

// Validate checks the reference can be stringified and parsed back losslessly.
func (r UnitReference) Validate() error {
	if strings.TrimSpace(r.CollectionKey) == "" {
		return fmt.Errorf("%w: collection key is required", ErrInvalidInput)
	}
	if r.Group < 1 {
		return fmt.Errorf("%w: group must be positive, got %d", ErrInvalidInput, r.Group)
	}
	if r.Unit < 1 {
		return fmt.Errorf("%w: unit must be positive, got %d", ErrInvalidInput, r.Unit)
	}
	if r.Version == "" {
		return fmt.Errorf("%w: corpus version is required", ErrInvalidInput)
	}
	if strings.Contains(r.Version, "-") {
		return fmt.Errorf("%w: corpus version %q may not contain '-'", ErrInvalidInput, r.Version)
	}
	return nil
}

// GroupPrefix returns the key prefix shared by every unit of the same group.
func (r UnitReference) GroupPrefix() string {
	return fmt.Sprintf("%s-%d-", r.CollectionKey, r.Group)
}

// ParseUnitReference parses a key produced by UnitReference.String.
// The key is split from the right so collection keys may contain '-'.
func ParseUnitReference(s string) (UnitReference, error) {
	parts := strings.Split(s, "-")
	if len(parts) < 4 {
		return UnitReference{}, fmt.Errorf("%w: malformed unit reference %q", ErrInvalidInput, s)
	}

	n := len(parts)
	group, err := strconv.Atoi(parts[n-3])
	if err != nil {
		return UnitReference{}, fmt.Errorf("%w: malformed group in %q", ErrInvalidInput, s)
	}
	unit, err := strconv.Atoi(parts[n-2])
	if err != nil {
		return UnitReference{}, fmt.Errorf("%w: malformed unit in %q", ErrInvalidInput, s)
	}

	ref := UnitReference{
		CollectionKey: strings.Join(parts[:n-3], "-"),
		Group:         group,
		Unit:          unit,
		Version:       parts[n-1],
	}
	if err := ref.Validate(); err != nil {
		return UnitReference{}, err
	}
	return ref, nil
}

// ProcessedUnit records that a unit has been processed.
// Its existence is the sole idempotency signal; it is never updated in place.
type ProcessedUnit struct {
	// Ref identifies the unit.
	Ref UnitReference

	// ProcessedAt is when the result was committed.
	ProcessedAt time.Time
}

// ProcessResult is the outcome of processing one unit.
type ProcessResult struct {
	// Ref identifies the unit.
	Ref UnitReference

	// Names are the names stored for the unit.
	Names []ExtractedName

	// AlreadyProcessed is true when the names came from the store
	// and no extraction call was made.
	AlreadyProcessed bool

	// Skipped is true when the heuristic filter ruled out extraction.
	Skipped bool
}

// NewlyProcessed reports whether this call committed the unit.
func (r ProcessResult) NewlyProcessed() bool {
	return !r.AlreadyProcessed
}
