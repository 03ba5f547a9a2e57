package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/nomina/internal/adapters/driven/config"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in config.toml under the nomina directory.
// Keys are dotted ("llm.provider") in memory and written back as TOML
// tables, so the file stays readable and hand-editable.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore opens (or creates) configDir/config.toml.
// An empty configDir means ~/.nomina.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".nomina")
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// lookup returns the value at key converted by conv, or the zero value.
func lookup[T any](s *ConfigStore, key string, conv func(any) (T, bool)) T {
	var zero T
	val, ok := s.Get(key)
	if !ok {
		return zero
	}
	if out, ok := conv(val); ok {
		return out
	}
	return zero
}

func (s *ConfigStore) GetString(key string) string { return lookup(s, key, config.String) }

func (s *ConfigStore) GetBool(key string) bool { return lookup(s, key, config.Bool) }

func (s *ConfigStore) GetInt(key string) int { return lookup(s, key, config.Int) }

func (s *ConfigStore) GetInt64(key string) int64 { return lookup(s, key, config.Int64) }

func (s *ConfigStore) GetFloat(key string) float64 { return lookup(s, key, config.Float) }

func (s *ConfigStore) GetStringSlice(key string) []string { return lookup(s, key, config.StringSlice) }

// Set stores a value and writes the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes through a temp file and rename so an interrupted write never
// leaves a truncated config behind. Caller holds the lock.
func (s *ConfigStore) save() error {
	tree, err := nestKeys(s.data)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ".config-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}

// Load replaces the in-memory settings with the file contents.
// A missing file yields empty settings.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = make(map[string]any)
		return nil
	}
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	s.data = flattenMap(tree, "")
	return nil
}

// flattenMap turns {"a": {"b": 1}} into {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, key) {
				out[k] = v
			}
			continue
		}
		out[key] = value
	}
	return out
}

// nestKeys is the inverse of flattenMap. A key that is both a value and a
// table ("llm" and "llm.model") is an error.
func nestKeys(flat map[string]any) (map[string]any, error) {
	root := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := root
		for _, part := range parts[:len(parts)-1] {
			child, exists := node[part]
			if !exists {
				next := make(map[string]any)
				node[part] = next
				node = next
				continue
			}
			table, ok := child.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("config key %q conflicts with value at %q", key, part)
			}
			node = table
		}
		leaf := parts[len(parts)-1]
		if _, isTable := node[leaf].(map[string]any); isTable {
			return nil, fmt.Errorf("config key %q conflicts with table of the same name", key)
		}
		node[leaf] = value
	}
	return root, nil
}

func (s *ConfigStore) Path() string {
	return s.filePath
}
