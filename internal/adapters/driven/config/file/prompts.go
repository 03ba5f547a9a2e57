package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/nomina/internal/adapters/driven/extractor"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// builtinPrompts seeds the prompt directory and stands in for missing or
// empty files.
var builtinPrompts = map[string]string{
	driven.PromptExtractNames: extractor.DefaultPrompt,
}

// replyMarkers are strings a custom prompt must keep for replies to parse.
var replyMarkers = map[string]string{
	driven.PromptExtractNames: `"names"`,
}

const promptReadme = "# nomina prompts\n\n" +
	"- `extract_names.txt` - system prompt sent with every verse\n\n" +
	"Edits apply to the next extraction; there is no need to restart.\n" +
	"Delete the file to restore the built-in prompt on the next run.\n\n" +
	"The previous verse, when there is one, is appended after your prompt under a\n" +
	"CONTEXTO heading. Keep the output format ({\"names\": [{\"name\", \"type\"}]})\n" +
	"or replies will be discarded as malformed.\n"

// cachedPrompt remembers which version of a file its text came from.
type cachedPrompt struct {
	text    string
	modTime time.Time
	size    int64
}

// PromptStore serves prompts from <name>.txt files in a directory. A file
// is re-read when its size or modification time changes.
//
// The directory and its default files are created on the first Load.
type PromptStore struct {
	dir string

	setup    sync.Once
	setupErr error

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

// NewPromptStore creates a store over promptDir, default ~/.nomina/prompts.
// Nothing is touched on disk until the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".nomina", "prompts")
	}
	return &PromptStore{dir: promptDir, cache: make(map[string]cachedPrompt)}, nil
}

// Load returns the named prompt. A prompt with a built-in version never
// fails: unreadable or empty files fall back to it.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, hasBuiltin := builtinPrompts[name]

	s.setup.Do(s.seed)
	if s.setupErr != nil {
		if hasBuiltin {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.setupErr)
	}

	text, err := s.read(name)
	switch {
	case err == nil && text != "":
		return text, nil
	case hasBuiltin:
		return builtin, nil
	case err == nil:
		return "", fmt.Errorf("load prompt %q: empty prompt file", name)
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
}

// read returns the trimmed file content, from cache when the file is unchanged.
func (s *PromptStore) read(name string) (string, error) {
	path := s.Path(name)
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache[name]; ok && c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
		return c.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if marker, ok := replyMarkers[name]; ok && text != "" && !strings.Contains(text, marker) {
		logger.Warn("prompt %s does not mention %s; replies may not parse", path, marker)
	}
	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime(), size: info.Size()}
	return text, nil
}

// Reload forgets every cached prompt.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]cachedPrompt)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Path returns the file backing the named prompt.
func (s *PromptStore) Path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// seed creates the directory plus any missing default prompt and README.
// Existing files are left alone.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.setupErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{filepath.Join(s.dir, "README.md"): promptReadme}
	for name, text := range builtinPrompts {
		files[s.Path(name)] = text + "\n"
	}
	for path, content := range files {
		if err := writeIfMissing(path, content); err != nil {
			s.setupErr = err
			return
		}
	}
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
