package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/core/ports/driving"
	"github.com/custodia-labs/nomina/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.Orchestrator = (*Orchestrator)(nil)

// Sweep scopes reported to the observer.
const (
	ScopeGroup      = "group"
	ScopeCollection = "collection"
)

// Orchestrator sweeps groups and collections one unit at a time, checking the
// budget before every unit and every group.
//
// Cancellation is cooperative: ctx is only checked between units, and the
// unit in flight always runs to completion.
type Orchestrator struct {
	corpus       driven.Corpus
	store        driven.ProcessingStore
	processor    driving.UnitService
	budget       driving.BudgetService
	refreshEvery int
	observer     driven.SweepObserver
}

// NewOrchestrator creates a new orchestrator.
// refreshEvery is how many newly processed units pass between budget
// refreshes; values below 1 use domain.DefaultRefreshEvery.
func NewOrchestrator(
	corpus driven.Corpus,
	store driven.ProcessingStore,
	processor driving.UnitService,
	budget driving.BudgetService,
	refreshEvery int,
) *Orchestrator {
	if refreshEvery < 1 {
		refreshEvery = domain.DefaultRefreshEvery
	}
	return &Orchestrator{
		corpus:       corpus,
		store:        store,
		processor:    processor,
		budget:       budget,
		refreshEvery: refreshEvery,
		observer:     nopObserver{},
	}
}

// SetObserver installs a sweep observer. nil restores the no-op observer.
func (o *Orchestrator) SetObserver(observer driven.SweepObserver) {
	if observer == nil {
		observer = nopObserver{}
	}
	o.observer = observer
}

// run is the state shared by every group of one sweep.
type run struct {
	id       string
	opts     domain.SweepOptions
	progress *collectionProgress
	newly    int
}

func (r *run) report(p domain.SweepProgress) {
	if r.opts.Progress == nil {
		return
	}
	p.RunID = r.id
	p.CollectionKey = r.progress.collection.Key
	r.opts.Progress(p)
}

// SweepGroup processes every unprocessed unit of a group in ascending order.
func (o *Orchestrator) SweepGroup(
	ctx context.Context,
	collectionKey string,
	group int,
	opts domain.SweepOptions,
) (*domain.GroupSweepResult, error) {
	r, err := o.startRun(ctx, collectionKey, opts)
	if err != nil {
		return nil, err
	}
	if !r.progress.hasGroup(group) {
		return nil, fmt.Errorf("%w: %s group %d", domain.ErrNotFound, collectionKey, group)
	}
	logger.Info("[%s] sweeping %s %d", r.id, collectionKey, group)

	res, err := o.sweepGroup(ctx, r, group, 1, 1)
	if err != nil {
		return nil, err
	}

	o.finishRun(ctx, r, res.Outcome)
	o.observer.SweepFinished(ScopeGroup, res.Outcome)
	logger.Info("[%s] %s %d %s: %d newly processed, %d failed",
		r.id, collectionKey, group, res.Outcome, res.NewlyProcessed, len(res.Failures))
	return res, nil
}

// SweepCollection processes every group of a collection in ascending order.
func (o *Orchestrator) SweepCollection(
	ctx context.Context,
	collectionKey string,
	opts domain.SweepOptions,
) (*domain.CollectionSweepResult, error) {
	r, err := o.startRun(ctx, collectionKey, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("[%s] sweeping collection %s", r.id, collectionKey)

	res := &domain.CollectionSweepResult{
		RunID:         r.id,
		CollectionKey: collectionKey,
		Outcome:       domain.SweepCompleted,
	}
	total := r.progress.collection.GroupCount

	for g := 1; g <= total; g++ {
		if ctx.Err() != nil {
			res.Outcome = domain.SweepCancelled
			break
		}
		if !o.budget.CanProceed() {
			res.Outcome = domain.SweepStoppedByLimit
			break
		}

		res.GroupsVisited++
		gr, err := o.sweepGroup(ctx, r, g, g, total)
		if err != nil {
			return nil, err
		}
		res.Groups = append(res.Groups, *gr)
		res.SweepCounters.Merge(gr.SweepCounters)
		res.Failures = append(res.Failures, gr.Failures...)

		if gr.Outcome != domain.SweepCompleted {
			res.Outcome = gr.Outcome
			break
		}
	}

	res.StoppedByLimit = res.Outcome == domain.SweepStoppedByLimit
	res.Stats = r.progress.collectionStats()

	o.finishRun(ctx, r, res.Outcome)
	o.observer.SweepFinished(ScopeCollection, res.Outcome)
	logger.Info("[%s] collection %s %s: %d groups, %d newly processed, %d failed",
		r.id, collectionKey, res.Outcome, res.GroupsVisited, res.NewlyProcessed, len(res.Failures))
	return res, nil
}

func (o *Orchestrator) startRun(ctx context.Context, collectionKey string, opts domain.SweepOptions) (*run, error) {
	progress, err := loadCollectionProgress(ctx, o.corpus, o.store, collectionKey)
	if err != nil {
		return nil, err
	}
	return &run{
		id:       uuid.NewString(),
		opts:     opts,
		progress: progress,
	}, nil
}

// sweepGroup handles the pending units of one group and emits the group-boundary event.
func (o *Orchestrator) sweepGroup(
	ctx context.Context,
	r *run,
	group, groupIndex, groupTotal int,
) (*domain.GroupSweepResult, error) {
	key := r.progress.collection.Key
	units, err := o.corpus.ListGroupUnits(ctx, key, group)
	if err != nil {
		return nil, fmt.Errorf("list units %s %d: %w", key, group, err)
	}

	texts := make(map[int]string, len(units))
	pending := make([]domain.CorpusUnit, 0, len(units))
	for _, u := range units {
		texts[u.Number] = u.Text
		if !r.progress.isDone(group, u.Number) {
			pending = append(pending, u)
		}
	}

	res := &domain.GroupSweepResult{
		RunID:         r.id,
		CollectionKey: key,
		Group:         group,
		Pending:       len(pending),
		Outcome:       domain.SweepCompleted,
	}

	for i, u := range pending {
		if ctx.Err() != nil {
			res.Outcome = domain.SweepCancelled
			break
		}
		if !o.budget.CanProceed() {
			res.Outcome = domain.SweepStoppedByLimit
			logger.Error("[%s] budget limit reached (%d tokens), stopping before %s",
				r.id, o.budget.CurrentTotal(), r.progress.ref(group, u.Number))
			break
		}

		ref := r.progress.ref(group, u.Number)
		precedingContext := ""
		if u.Number > 1 {
			precedingContext = texts[u.Number-1]
		}

		result, err := o.processor.ProcessText(context.WithoutCancel(ctx), ref, u.Text, precedingContext, false)
		event := domain.SweepProgress{
			Group:      group,
			GroupIndex: groupIndex,
			GroupTotal: groupTotal,
			UnitIndex:  i + 1,
			UnitTotal:  len(pending),
		}

		if errors.Is(err, domain.ErrBudgetExceeded) {
			res.Outcome = domain.SweepStoppedByLimit
			logger.Error("[%s] %v, stopping", r.id, err)
			break
		}
		if err != nil {
			logger.Error("[%s] %s: %v", r.id, ref, err)
			res.Failures = append(res.Failures, domain.UnitFailure{Ref: ref, Err: err})
			o.observer.UnitFailed(ref, err)
			event.LastErr = err
			r.report(event)
			continue
		}

		res.SweepCounters.Add(result)
		r.progress.markDone(group, u.Number)
		o.observer.UnitProcessed(result)
		event.Last = result
		r.report(event)

		if result.NewlyProcessed() {
			r.newly++
			if r.newly%o.refreshEvery == 0 {
				o.refresh(ctx, r)
			}
		}
	}

	res.StoppedByLimit = res.Outcome == domain.SweepStoppedByLimit
	res.Stats = r.progress.groupStats(group)

	groupStats := res.Stats
	collectionStats := r.progress.collectionStats()
	r.report(domain.SweepProgress{
		Group:           group,
		GroupIndex:      groupIndex,
		GroupTotal:      groupTotal,
		UnitIndex:       len(pending),
		UnitTotal:       len(pending),
		GroupDone:       true,
		GroupStats:      &groupStats,
		CollectionStats: &collectionStats,
	})
	return res, nil
}

// finishRun refreshes the budget once more when the run spent anything.
func (o *Orchestrator) finishRun(ctx context.Context, r *run, outcome domain.SweepOutcome) {
	if r.newly > 0 || outcome == domain.SweepStoppedByLimit {
		o.refresh(ctx, r)
	}
}

// refresh updates the budget snapshot. Failures keep the old snapshot.
func (o *Orchestrator) refresh(ctx context.Context, r *run) {
	snap, err := o.budget.Refresh(context.WithoutCancel(ctx))
	if err != nil {
		logger.Warn("[%s] budget refresh: %v", r.id, err)
		return
	}
	o.observer.BudgetRefreshed(*snap)
	if o.budget.IsAtWarning() {
		logger.Error("[%s] budget warning: %d of %d tokens used",
			r.id, snap.TotalUnits, o.budget.Thresholds().Limit)
	}
}

// nopObserver ignores every event.
type nopObserver struct{}

func (nopObserver) UnitProcessed(*domain.ProcessResult)       {}
func (nopObserver) UnitFailed(domain.UnitReference, error)    {}
func (nopObserver) BudgetRefreshed(domain.BudgetSnapshot)     {}
func (nopObserver) SweepFinished(string, domain.SweepOutcome) {}
