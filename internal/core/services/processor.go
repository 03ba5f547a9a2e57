package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/core/ports/driving"
	"github.com/custodia-labs/nomina/internal/logger"
	"github.com/custodia-labs/nomina/internal/normalisers/names"
)

// Ensure UnitProcessor implements the interface.
var _ driving.UnitService = (*UnitProcessor)(nil)

// UnitProcessor takes one unit from unprocessed to committed.
//
// A unit already in the store is answered from the store with no
// extraction call. Otherwise the heuristic filter decides between
// committing it empty and asking the extractor for its names.
type UnitProcessor struct {
	store     driven.ProcessingStore
	corpus    driven.Corpus
	filter    driven.ExtractionFilter
	extractor driven.Extractor
	budget    budgetGate
}

// budgetGate is the part of the budget tracker consulted before extraction.
type budgetGate interface {
	CanProceed() bool
	CurrentTotal() int64
}

// NewUnitProcessor creates a unit processor.
// extractor may be nil; units that need extraction then fail with domain.ErrLLMUnavailable.
func NewUnitProcessor(
	store driven.ProcessingStore,
	corpus driven.Corpus,
	filter driven.ExtractionFilter,
	extractor driven.Extractor,
) *UnitProcessor {
	return &UnitProcessor{
		store:     store,
		corpus:    corpus,
		filter:    filter,
		extractor: extractor,
	}
}

// SetBudget makes every extraction call wait on the budget. Cached and
// filtered units never consult it.
func (p *UnitProcessor) SetBudget(budget budgetGate) {
	p.budget = budget
}

// Process resolves the unit and its predecessor from the corpus and processes it.
func (p *UnitProcessor) Process(ctx context.Context, ref domain.UnitReference, force bool) (*domain.ProcessResult, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	if !force {
		if cached, err := p.cached(ctx, ref); err != nil || cached != nil {
			return cached, err
		}
	}

	text, precedingContext, err := p.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	if force {
		if err := p.reprocess(ctx, ref, text); err != nil {
			return nil, err
		}
	}
	return p.extractAndCommit(ctx, ref, text, precedingContext)
}

// ProcessText processes a unit whose text the caller already holds.
func (p *UnitProcessor) ProcessText(
	ctx context.Context,
	ref domain.UnitReference,
	text, precedingContext string,
	force bool,
) (*domain.ProcessResult, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	if force {
		if err := p.reprocess(ctx, ref, text); err != nil {
			return nil, err
		}
	} else {
		if cached, err := p.cached(ctx, ref); err != nil || cached != nil {
			return cached, err
		}
	}
	return p.extractAndCommit(ctx, ref, text, precedingContext)
}

// reprocess clears a unit before a forced run. A run the budget would refuse
// leaves the stored names in place.
func (p *UnitProcessor) reprocess(ctx context.Context, ref domain.UnitReference, text string) error {
	if p.filter.HasExtractionPotential(text) {
		if err := p.checkBudget(ref); err != nil {
			return err
		}
	}
	if err := p.store.Clear(ctx, ref); err != nil {
		return fmt.Errorf("clear %s: %w", ref, err)
	}
	return nil
}

func (p *UnitProcessor) checkBudget(ref domain.UnitReference) error {
	if p.budget == nil || p.budget.CanProceed() {
		return nil
	}
	return fmt.Errorf("extract %s: %w (%d tokens used)", ref, domain.ErrBudgetExceeded, p.budget.CurrentTotal())
}

// cached returns the stored result of an already processed unit, or nil.
func (p *UnitProcessor) cached(ctx context.Context, ref domain.UnitReference) (*domain.ProcessResult, error) {
	processed, err := p.store.IsProcessed(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", ref, err)
	}
	if !processed {
		return nil, nil
	}
	return p.stored(ctx, ref)
}

func (p *UnitProcessor) stored(ctx context.Context, ref domain.UnitReference) (*domain.ProcessResult, error) {
	stored, err := p.store.GetNames(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("get names %s: %w", ref, err)
	}
	if stored == nil {
		stored = []domain.ExtractedName{}
	}
	return &domain.ProcessResult{Ref: ref, Names: stored, AlreadyProcessed: true}, nil
}

// resolve returns the unit text and, for units after the first, the text of
// the previous unit in the same group.
func (p *UnitProcessor) resolve(ctx context.Context, ref domain.UnitReference) (string, string, error) {
	if p.corpus == nil {
		return "", "", fmt.Errorf("%w: %s: no corpus configured", domain.ErrUnitNotFound, ref)
	}

	text, ok, err := p.corpus.GetUnitText(ctx, ref.CollectionKey, ref.Group, ref.Unit)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", ref, err)
	}
	if !ok {
		return "", "", fmt.Errorf("%w: %s", domain.ErrUnitNotFound, ref)
	}

	if ref.Unit <= 1 {
		return text, "", nil
	}
	prev, ok, err := p.corpus.GetUnitText(ctx, ref.CollectionKey, ref.Group, ref.Unit-1)
	if err != nil {
		return "", "", fmt.Errorf("resolve context of %s: %w", ref, err)
	}
	if !ok {
		prev = ""
	}
	return text, prev, nil
}

// extractAndCommit runs the filter and, when needed, the extractor, then commits.
func (p *UnitProcessor) extractAndCommit(
	ctx context.Context,
	ref domain.UnitReference,
	text, precedingContext string,
) (*domain.ProcessResult, error) {
	if !p.filter.HasExtractionPotential(text) {
		logger.Debug("%s: no extraction potential, committing empty", ref)
		return p.commit(ctx, ref, []domain.ExtractedName{}, true)
	}

	if p.extractor == nil {
		return nil, fmt.Errorf("extract %s: %w", ref, domain.ErrLLMUnavailable)
	}
	if err := p.checkBudget(ref); err != nil {
		return nil, err
	}
	raw, err := p.extractor.Extract(ctx, driven.ExtractionRequest{
		Text:             text,
		PrecedingContext: precedingContext,
	})
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", ref, err)
	}

	extracted := names.Normalize(raw)
	logger.Debug("%s: %d names extracted", ref, len(extracted))
	return p.commit(ctx, ref, extracted, false)
}

// commit stores the result. A commit that lost a race returns what the winner stored.
func (p *UnitProcessor) commit(
	ctx context.Context,
	ref domain.UnitReference,
	extracted []domain.ExtractedName,
	skipped bool,
) (*domain.ProcessResult, error) {
	err := p.store.Commit(ctx, ref, extracted)
	if errors.Is(err, domain.ErrAlreadyProcessed) {
		logger.Info("%s was committed concurrently, using stored names", ref)
		return p.stored(ctx, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", ref, err)
	}
	return &domain.ProcessResult{Ref: ref, Names: extracted, Skipped: skipped}, nil
}
