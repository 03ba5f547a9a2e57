package file

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nomina/internal/adapters/driven/extractor"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/logger"
)

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
	assert.Equal(t, filepath.Join(dir, "extract_names.txt"), store.Path(driven.PromptExtractNames))
}

func TestNewPromptStore_NoIOBeforeLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")

	_, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptExtractNames)
	require.NoError(t, err)
	assert.Equal(t, extractor.DefaultPrompt, prompt)

	for _, f := range []string{"extract_names.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extract_names.txt"), []byte("  reglas propias \n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptExtractNames)
	require.NoError(t, err)
	assert.Equal(t, "reglas propias", prompt)
}

func TestPromptStore_Load_EmptyFileFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extract_names.txt"), []byte("\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptExtractNames)
	require.NoError(t, err)
	assert.Equal(t, extractor.DefaultPrompt, prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("does_not_exist")
	assert.Error(t, err)
}

func TestPromptStore_Load_InitFailureUsesDefault(t *testing.T) {
	store, err := NewPromptStore("/dev/null/prompts")
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptExtractNames)
	require.NoError(t, err)
	assert.Equal(t, extractor.DefaultPrompt, prompt)

	_, err = store.Load("other")
	assert.Error(t, err)
}

func TestPromptStore_Load_PicksUpEditsWithoutReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptExtractNames)
	require.NoError(t, err)
	assert.Equal(t, extractor.DefaultPrompt, first)

	edited := `Devuelve {"names": []} con los nombres propios.`
	require.NoError(t, os.WriteFile(store.Path(driven.PromptExtractNames), []byte(edited), 0600))

	second, err := store.Load(driven.PromptExtractNames)
	require.NoError(t, err)
	assert.Equal(t, edited, second)
}

func TestPromptStore_Reload_ClearsCache(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(driven.PromptExtractNames)
	require.NoError(t, err)
	require.Len(t, store.cache, 1)

	store.Reload()
	assert.Empty(t, store.cache)

	again, err := store.Load(driven.PromptExtractNames)
	require.NoError(t, err)
	assert.Equal(t, extractor.DefaultPrompt, again)
}

func TestPromptStore_Load_WarnsWhenReplyFormatDropped(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(driven.PromptExtractNames), []byte("Lista los nombres."), 0600))

	prompt, err := store.Load(driven.PromptExtractNames)
	require.NoError(t, err)

	assert.Equal(t, "Lista los nombres.", prompt)
	assert.Contains(t, logs.String(), `does not mention "names"`)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	readme := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("mine"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, err = store.Load(driven.PromptExtractNames)
	require.NoError(t, err)

	data, err := os.ReadFile(readme)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := store.Load(driven.PromptExtractNames)
			assert.NoError(t, err)
			assert.NotEmpty(t, p)
		}()
	}
	wg.Wait()
}
