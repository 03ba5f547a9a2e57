package driven

// PromptExtractNames is the system prompt for proper-name extraction. It has
// no placeholders; the extractor appends the preceding verse when present.
const PromptExtractNames = "extract_names"

// PromptStore serves editable prompt templates by name.
type PromptStore interface {
	// Load returns the named prompt. Prompts with a built-in version fall
	// back to it rather than failing.
	Load(name string) (string, error)

	// Reload drops cached prompts.
	Reload()
}

// PromptStoreAware is implemented by services whose prompts can be customised.
// Without a store they use their built-in prompts.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
