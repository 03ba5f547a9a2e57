// Package prefilter decides, from unit text alone, whether a unit can
// contain a proper name worth an extraction call.
//
// Every whole-word occurrence of a divine epithet and of a common
// position-capitalised word is removed; any uppercase letter left over
// signals a candidate proper name. A word counts as whole when neither
// neighbour is a letter, accented letters included, so "Esa" is never
// stripped out of "Esaú".
package prefilter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/logger"
)

// Ensure Filter implements the interface.
var _ driven.ExtractionFilter = (*Filter)(nil)

// Filter is the heuristic pre-filter. It is immutable and safe for concurrent use.
type Filter struct {
	divine []string
	common []string
}

// New creates a filter over the given lexicon.
func New(lex Lexicon) *Filter {
	lex = lex.Extend(Lexicon{})
	return &Filter{
		divine: lex.Divine,
		common: lex.Common,
	}
}

// Default creates a filter over the built-in lexicon.
func Default() *Filter {
	return New(DefaultLexicon())
}

// NewFromFile creates a filter from the built-in lexicon extended (or replaced)
// by the YAML file at path. An empty path yields the default filter.
func NewFromFile(path string) (*Filter, error) {
	if path == "" {
		return Default(), nil
	}

	lex, err := LoadLexicon(path)
	if err != nil {
		return nil, err
	}

	merged := lex.Extend(DefaultLexicon())
	logger.Debug("prefilter: loaded lexicon %s (%d divine, %d common, replace=%t)",
		path, len(merged.Divine), len(merged.Common), lex.Replace)

	return New(merged), nil
}

// HasExtractionPotential reports whether text may contain a proper name.
// Empty or whitespace-only text has no potential.
func (f *Filter) HasExtractionPotential(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	residual := text
	for _, w := range f.divine {
		residual = removeWord(residual, w)
	}
	for _, w := range f.common {
		residual = removeWord(residual, w)
	}

	return strings.IndexFunc(residual, unicode.IsUpper) >= 0
}

// removeWord deletes every whole-word occurrence of word from s.
func removeWord(s, word string) string {
	if !strings.Contains(s, word) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	i := 0
	for {
		j := strings.Index(s[i:], word)
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		start := i + j
		end := start + len(word)

		if letterBefore(s, start) || letterAfter(s, end) {
			// embedded in a longer word: keep one rune and search on
			_, size := utf8.DecodeRuneInString(s[start:])
			b.WriteString(s[i : start+size])
			i = start + size
			continue
		}

		b.WriteString(s[i:start])
		i = end
	}

	return b.String()
}

func letterBefore(s string, pos int) bool {
	if pos == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:pos])
	return unicode.IsLetter(r)
}

func letterAfter(s string, pos int) bool {
	if pos >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[pos:])
	return unicode.IsLetter(r)
}
