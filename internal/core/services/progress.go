package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

// collectionProgress tracks which units of one collection are processed.
// It is loaded with one store query and then updated in memory by sweeps.
type collectionProgress struct {
	collection domain.Collection
	version    string
	totals     map[int]int
	done       map[int]map[int]bool
}

func loadCollectionProgress(
	ctx context.Context,
	corpus driven.Corpus,
	store driven.ProcessingStore,
	key string,
) (*collectionProgress, error) {
	coll, err := corpus.GetCollection(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", key, err)
	}

	p := &collectionProgress{
		collection: *coll,
		version:    corpus.Version(),
		totals:     make(map[int]int, coll.GroupCount),
		done:       make(map[int]map[int]bool, coll.GroupCount),
	}

	for g := 1; g <= coll.GroupCount; g++ {
		n, err := corpus.CountUnitsInGroup(ctx, key, g)
		if err != nil {
			return nil, fmt.Errorf("count units %s %d: %w", key, g, err)
		}
		p.totals[g] = n
	}

	processed, err := store.ListProcessed(ctx, key, p.version)
	if err != nil {
		return nil, fmt.Errorf("list processed %s: %w", key, err)
	}
	for _, pu := range processed {
		p.markDone(pu.Ref.Group, pu.Ref.Unit)
	}
	return p, nil
}

func (p *collectionProgress) hasGroup(group int) bool {
	return group >= 1 && group <= p.collection.GroupCount
}

func (p *collectionProgress) ref(group, unit int) domain.UnitReference {
	return domain.UnitReference{
		CollectionKey: p.collection.Key,
		Group:         group,
		Unit:          unit,
		Version:       p.version,
	}
}

func (p *collectionProgress) markDone(group, unit int) {
	units, ok := p.done[group]
	if !ok {
		units = make(map[int]bool)
		p.done[group] = units
	}
	units[unit] = true
}

func (p *collectionProgress) isDone(group, unit int) bool {
	return p.done[group][unit]
}

func (p *collectionProgress) groupStats(group int) domain.GroupStats {
	units := make([]int, 0, len(p.done[group]))
	for u := range p.done[group] {
		units = append(units, u)
	}
	sort.Ints(units)

	total := p.totals[group]
	return domain.GroupStats{
		Group:          group,
		Total:          total,
		Processed:      len(units),
		ProcessedUnits: units,
		Percentage:     domain.Percentage(len(units), total),
	}
}

// collectionStats totals against the unit count of the collection index.
func (p *collectionProgress) collectionStats() domain.CollectionStats {
	stats := domain.CollectionStats{
		Key:    p.collection.Key,
		Total:  p.collection.UnitCount,
		Groups: make([]domain.GroupStats, 0, p.collection.GroupCount),
	}
	for g := 1; g <= p.collection.GroupCount; g++ {
		gs := p.groupStats(g)
		stats.Processed += gs.Processed
		stats.Groups = append(stats.Groups, gs)
	}
	stats.Percentage = domain.Percentage(stats.Processed, stats.Total)
	return stats
}
