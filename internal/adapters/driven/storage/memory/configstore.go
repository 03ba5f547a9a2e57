package memory

import (
	"sync"

	"github.com/custodia-labs/nomina/internal/adapters/driven/config"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory driven.ConfigStore for tests that must not
// touch disk. Save and Load do nothing.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) GetString(key string) string        { return get(s, key, config.String) }
func (s *ConfigStore) GetBool(key string) bool            { return get(s, key, config.Bool) }
func (s *ConfigStore) GetInt(key string) int              { return get(s, key, config.Int) }
func (s *ConfigStore) GetInt64(key string) int64          { return get(s, key, config.Int64) }
func (s *ConfigStore) GetFloat(key string) float64        { return get(s, key, config.Float) }
func (s *ConfigStore) GetStringSlice(key string) []string { return get(s, key, config.StringSlice) }

func get[T any](s *ConfigStore, key string, conv func(any) (T, bool)) T {
	v, _ := s.Get(key)
	out, _ := conv(v)
	return out
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *ConfigStore) Save() error { return nil }
func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string {
	return ":memory:"
}
