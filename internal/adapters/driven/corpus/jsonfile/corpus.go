// Package jsonfile reads the corpus from a directory of JSON files.
//
// The directory holds _index.json, an array of collection descriptors, and
// one <key>.json per collection: an array of groups, each an array of unit
// strings. Groups and units are addressed 1-based.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/logger"
)

// indexFile is the collection index inside the corpus directory.
const indexFile = "_index.json"

// Ensure Corpus implements the interface.
var _ driven.Corpus = (*Corpus)(nil)

// Config configures the corpus reader.
type Config struct {
	// Dir is the corpus directory.
	Dir string

	// Version is the corpus edition, e.g. "rv1960".
	Version string

	// Exclude lists collection keys hidden from every operation.
	Exclude []string
}

// indexEntry mirrors one element of _index.json.
type indexEntry struct {
	Testament  string `json:"testament"`
	Title      string `json:"title"`
	ShortTitle string `json:"shortTitle"`
	Abbr       string `json:"abbr"`
	Category   string `json:"category"`
	Key        string `json:"key"`
	Number     int    `json:"number"`
	Chapters   int    `json:"chapters"`
	Verses     int    `json:"verses"`
}

// Corpus is a read-only, lazily loaded view of a JSON corpus directory.
// Loaded files are cached for the lifetime of the value.
type Corpus struct {
	dir     string
	version string
	exclude map[string]struct{}

	mu          sync.RWMutex
	collections []domain.Collection
	byKey       map[string]domain.Collection
	books       map[string][][]string
}

// New creates a corpus reader. No I/O happens until the first call.
func New(cfg Config) (*Corpus, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: corpus directory is required", domain.ErrInvalidInput)
	}
	version := cfg.Version
	if version == "" {
		version = domain.DefaultCorpusVersion
	}

	exclude := make(map[string]struct{}, len(cfg.Exclude))
	for _, k := range cfg.Exclude {
		exclude[k] = struct{}{}
	}

	return &Corpus{
		dir:     cfg.Dir,
		version: version,
		exclude: exclude,
		books:   make(map[string][][]string),
	}, nil
}

// Version returns the corpus edition.
func (c *Corpus) Version() string {
	return c.version
}

// ListCollections returns the non-excluded collections in canonical order.
func (c *Corpus) ListCollections(_ context.Context) ([]domain.Collection, error) {
	if err := c.loadIndex(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Collection, len(c.collections))
	copy(out, c.collections)
	return out, nil
}

// GetCollection returns one collection or domain.ErrNotFound.
func (c *Corpus) GetCollection(_ context.Context, key string) (*domain.Collection, error) {
	if err := c.loadIndex(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	col, ok := c.byKey[key]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", key, domain.ErrNotFound)
	}
	return &col, nil
}

// ListGroupUnits returns the units of a group in ascending order.
func (c *Corpus) ListGroupUnits(ctx context.Context, key string, group int) ([]domain.CorpusUnit, error) {
	book, err := c.book(ctx, key)
	if err != nil {
		return nil, err
	}
	if group < 1 || group > len(book) {
		return nil, fmt.Errorf("group %d of %q: %w", group, key, domain.ErrNotFound)
	}

	texts := book[group-1]
	units := make([]domain.CorpusUnit, len(texts))
	for i, text := range texts {
		units[i] = domain.CorpusUnit{Number: i + 1, Text: text}
	}
	return units, nil
}

// GetUnitText returns the text of a unit. Missing or empty units report ok=false.
func (c *Corpus) GetUnitText(ctx context.Context, key string, group, unit int) (string, bool, error) {
	book, err := c.book(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if group < 1 || group > len(book) {
		return "", false, nil
	}
	texts := book[group-1]
	if unit < 1 || unit > len(texts) || texts[unit-1] == "" {
		return "", false, nil
	}
	return texts[unit-1], true, nil
}

// CountUnitsInGroup returns the number of units in a group, zero when out of range.
func (c *Corpus) CountUnitsInGroup(ctx context.Context, key string, group int) (int, error) {
	book, err := c.book(ctx, key)
	if err != nil {
		return 0, err
	}
	if group < 1 || group > len(book) {
		return 0, nil
	}
	return len(book[group-1]), nil
}

// loadIndex reads _index.json once.
func (c *Corpus) loadIndex() error {
	c.mu.RLock()
	loaded := c.byKey != nil
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(c.dir, indexFile))
	if err != nil {
		return fmt.Errorf("read corpus index: %w", err)
	}

	var entries []indexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse corpus index: %w", err)
	}

	collections := make([]domain.Collection, 0, len(entries))
	byKey := make(map[string]domain.Collection, len(entries))
	for _, e := range entries {
		if _, skip := c.exclude[e.Key]; skip || e.Key == "" {
			continue
		}
		col := domain.Collection{
			Key:          e.Key,
			DisplayName:  e.Title,
			ShortTitle:   e.ShortTitle,
			Abbreviation: e.Abbr,
			Testament:    e.Testament,
			Category:     e.Category,
			Number:       e.Number,
			GroupCount:   e.Chapters,
			UnitCount:    e.Verses,
		}
		collections = append(collections, col)
		byKey[col.Key] = col
	}
	sort.SliceStable(collections, func(i, j int) bool {
		return collections[i].Number < collections[j].Number
	})

	c.mu.Lock()
	if c.byKey == nil {
		c.collections = collections
		c.byKey = byKey
	}
	c.mu.Unlock()

	logger.Debug("corpus: indexed %d collections from %s", len(collections), c.dir)
	return nil
}

// book returns the parsed file of a collection, loading it on first use.
func (c *Corpus) book(_ context.Context, key string) ([][]string, error) {
	if err := c.loadIndex(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	_, known := c.byKey[key]
	book, cached := c.books[key]
	c.mu.RUnlock()
	if !known {
		return nil, fmt.Errorf("collection %q: %w", key, domain.ErrNotFound)
	}
	if cached {
		return book, nil
	}

	data, err := os.ReadFile(filepath.Join(c.dir, key+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("collection file %q: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read collection %q: %w", key, err)
	}
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("parse collection %q: %w", key, err)
	}

	c.mu.Lock()
	c.books[key] = book
	c.mu.Unlock()
	return book, nil
}
