// Package names canonicalises extracted proper names.
package names

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

// Normalize trims and NFC-normalises every name, maps absent or unknown types
// to person and removes duplicate (name, type) pairs keeping the first
// occurrence. Entries that are empty after trimming are dropped.
//
// The input is never modified.
func Normalize(in []domain.ExtractedName) []domain.ExtractedName {
	out := make([]domain.ExtractedName, 0, len(in))
	seen := make(map[domain.ExtractedName]struct{}, len(in))

	for _, n := range in {
		entry := domain.ExtractedName{
			Name: canonicalName(n.Name),
			Type: domain.ParseNameType(string(n.Type)),
		}
		if entry.Name == "" {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}

	return out
}

// canonicalName composes accents and collapses whitespace runs.
func canonicalName(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
