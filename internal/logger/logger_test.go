package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	captureOutput(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("unit %s", "juan-1-1-rv1960") }, "[DEBUG] unit juan-1-1-rv1960\n"},
		{"info", func() { Info("swept %d units", 3) }, "[INFO] swept 3 units\n"},
		{"warn", func() { Warn("budget at %d%%", 92) }, "[WARN] budget at 92%\n"},
		{"section", func() { Section("Sweep") }, "\n=== Sweep ===\n"},
		{"error", func() { Error("unit failed: %v", "timeout") }, "[ERROR] unit failed: timeout\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureOutput(t, true)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := captureOutput(t, false)

	Debug("hidden")
	Info("hidden")
	Section("hidden")
	assert.Empty(t, buf.String())

	Warn("budget refresh failed")
	assert.Equal(t, "[WARN] budget refresh failed\n", buf.String())
}

func TestSetLevel_ErrorOnly(t *testing.T) {
	buf := captureOutput(t, false)
	SetLevel(LevelError)

	Warn("hidden")
	assert.Empty(t, buf.String())
	assert.False(t, Enabled(LevelWarn))
	assert.True(t, Enabled(LevelError))

	Error("shown")
	assert.Equal(t, "[ERROR] shown\n", buf.String())
}

func TestError_AlwaysPrints(t *testing.T) {
	buf := captureOutput(t, false)

	Error("budget limit reached at %d tokens", 2500000)

	assert.Equal(t, "[ERROR] budget limit reached at 2500000 tokens\n", buf.String())
}
