package domain

import "strings"

// NameType classifies an extracted name.
type NameType string

// Available name types.
const (
	// NameTypePerson is a personal name (anthroponym), including named deities.
	NameTypePerson NameType = "person"

	// NameTypePlace is a place name (toponym).
	NameTypePlace NameType = "place"
)

// IsValid returns true if the name type is recognised.
func (t NameType) IsValid() bool {
	switch t {
	case NameTypePerson, NameTypePlace:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t NameType) String() string {
	return string(t)
}

// ParseNameType maps a raw type to a NameType.
// Absent or unknown types are treated as person.
func ParseNameType(s string) NameType {
	t := NameType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return NameTypePerson
	}
	return t
}

// ExtractedName is a proper name found in a unit.
type ExtractedName struct {
	Name string   `json:"name"`
	Type NameType `json:"type"`
}

// ExtractedNameRecord is an ExtractedName attached to the unit it came from.
// The same name may legitimately appear across many units.
type ExtractedNameRecord struct {
	Name string
	Type NameType
	Ref  UnitReference
}

// NameFilter narrows a name listing.
type NameFilter struct {
	// Query matches names containing it, case-insensitively. Empty matches all.
	Query string

	// Type restricts results to one type. Empty matches all.
	Type NameType
}

// Matches reports whether the name passes the filter.
func (f NameFilter) Matches(n ExtractedName) bool {
	if f.Type != "" && n.Type != f.Type {
		return false
	}
	if f.Query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Name), strings.ToLower(f.Query))
}
