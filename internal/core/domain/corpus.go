package domain

// Collection describes a book of the corpus.
type Collection struct {
	// Key is the stable identifier, e.g. "juan".
	Key string

	// DisplayName is the human-readable title.
	DisplayName string

	// ShortTitle is the abbreviated title.
	ShortTitle string

	// Abbreviation is the conventional abbreviation.
	Abbreviation string

	// Testament groups collections, e.g. "Nuevo Testamento".
	Testament string

	// Category is the literary category.
	Category string

	// Number is the canonical order of the collection.
	Number int

	// GroupCount is the number of groups (chapters).
	GroupCount int

	// UnitCount is the total number of units (verses).
	UnitCount int
}

// CorpusUnit is a unit and its text.
type CorpusUnit struct {
	// Number is the 1-based unit number.
	Number int

	// Text is the unit text.
	Text string
}

// UnitStatus annotates a unit with its processing state.
type UnitStatus struct {
	Unit      CorpusUnit
	Processed bool
	Names     []ExtractedName
}

// GroupStats summarises processing progress of one group.
type GroupStats struct {
	Group          int
	Total          int
	Processed      int
	ProcessedUnits []int
	Percentage     int
}

// CollectionStats summarises processing progress of one collection.
type CollectionStats struct {
	Key        string
	Total      int
	Processed  int
	Percentage int
	Groups     []GroupStats
}

// Percentage returns processed/total as a rounded integer percentage.
func Percentage(processed, total int) int {
	if total <= 0 {
		return 0
	}
	return (processed*200 + total) / (total * 2)
}
