package driven

// ConfigStore is flat key/value configuration with dotted keys such as
// "llm.provider" or "budget.limit_tokens".
//
// Typed getters return the zero value when the key is missing or holds a
// value of another type; numeric getters convert between number types.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path names the backing file, for display.
	Path() string
}
