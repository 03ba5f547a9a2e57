// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the nomina data directory (~/.nomina).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable LLM prompts
package file
