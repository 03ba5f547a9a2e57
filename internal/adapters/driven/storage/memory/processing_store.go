package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

// Ensure ProcessingStore implements the interface.
var _ driven.ProcessingStore = (*ProcessingStore)(nil)

type nameRecord struct {
	name domain.ExtractedName
	ref  domain.UnitReference
}

// ProcessingStore is an in-memory implementation of driven.ProcessingStore.
// A single mutex makes every mutation atomic.
type ProcessingStore struct {
	mu        sync.RWMutex
	processed map[string]domain.ProcessedUnit
	names     []nameRecord
	now       func() time.Time
}

// NewProcessingStore creates a new in-memory processing store.
func NewProcessingStore() *ProcessingStore {
	return &ProcessingStore{
		processed: make(map[string]domain.ProcessedUnit),
		now:       time.Now,
	}
}

// IsProcessed reports whether ref has a processed marker.
func (s *ProcessingStore) IsProcessed(_ context.Context, ref domain.UnitReference) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.processed[ref.String()]
	return ok, nil
}

// GetNames returns the names stored for ref in insertion order.
func (s *ProcessingStore) GetNames(_ context.Context, ref domain.UnitReference) ([]domain.ExtractedName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := []domain.ExtractedName{}
	for _, r := range s.names {
		if r.ref == ref {
			names = append(names, r.name)
		}
	}
	return names, nil
}

// Commit records ref as processed with its names.
func (s *ProcessingStore) Commit(_ context.Context, ref domain.UnitReference, names []domain.ExtractedName) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ref.String()
	if _, ok := s.processed[id]; ok {
		return fmt.Errorf("commit %s: %w", id, domain.ErrAlreadyProcessed)
	}

	s.processed[id] = domain.ProcessedUnit{Ref: ref, ProcessedAt: s.now().UTC()}
	for _, n := range names {
		s.names = append(s.names, nameRecord{
			name: domain.ExtractedName{Name: n.Name, Type: domain.ParseNameType(string(n.Type))},
			ref:  ref,
		})
	}
	return nil
}

// Clear removes ref's names and processed marker.
func (s *ProcessingStore) Clear(_ context.Context, ref domain.UnitReference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.processed, ref.String())
	s.names = s.filterNames(func(r nameRecord) bool { return r.ref != ref })
	return nil
}

// ListDistinctNames returns every distinct (name, type) ordered by type then name.
func (s *ProcessingStore) ListDistinctNames(_ context.Context) ([]domain.ExtractedName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[domain.ExtractedName]struct{})
	out := []domain.ExtractedName{}
	for _, r := range s.names {
		if _, ok := seen[r.name]; ok {
			continue
		}
		seen[r.name] = struct{}{}
		out = append(out, r.name)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ListUnitsForName returns the units a name was extracted from, in first-seen order.
func (s *ProcessingStore) ListUnitsForName(_ context.Context, name string) ([]domain.UnitReference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[domain.UnitReference]struct{})
	var refs []domain.UnitReference
	for _, r := range s.names {
		if r.name.Name != name {
			continue
		}
		if _, ok := seen[r.ref]; ok {
			continue
		}
		seen[r.ref] = struct{}{}
		refs = append(refs, r.ref)
	}
	return refs, nil
}

// DeleteName removes every record of name and returns the count removed.
func (s *ProcessingStore) DeleteName(_ context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.names)
	s.names = s.filterNames(func(r nameRecord) bool { return r.name.Name != name })
	return before - len(s.names), nil
}

// ListProcessed returns every processed unit of one collection and version.
func (s *ProcessingStore) ListProcessed(_ context.Context, collectionKey, version string) ([]domain.ProcessedUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var units []domain.ProcessedUnit
	for _, u := range s.processed {
		if u.Ref.CollectionKey == collectionKey && u.Ref.Version == version {
			units = append(units, u)
		}
	}
	sort.Slice(units, func(i, j int) bool {
		a, b := units[i].Ref, units[j].Ref
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Unit < b.Unit
	})
	return units, nil
}

// filterNames keeps the records for which keep returns true. Callers hold the lock.
func (s *ProcessingStore) filterNames(keep func(nameRecord) bool) []nameRecord {
	kept := s.names[:0:0]
	for _, r := range s.names {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	return kept
}
