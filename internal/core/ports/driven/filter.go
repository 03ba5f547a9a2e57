package driven

// ExtractionFilter decides from unit text alone whether an extraction call
// is worth making. Implementations are pure and total.
type ExtractionFilter interface {
	// HasExtractionPotential reports whether text may contain a proper name.
	HasExtractionPotential(text string) bool
}
