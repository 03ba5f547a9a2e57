// Package logger provides leveled logging to stderr.
//
// Warnings and errors always print, so budget trouble and unit failures are
// visible during unattended sweeps. Info, Debug and section headers need
// --verbose.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level orders messages by severity; lower is more severe.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var prefixes = map[Level]string{
	LevelError: "[ERROR] ",
	LevelWarn:  "[WARN] ",
	LevelInfo:  "[INFO] ",
	LevelDebug: "[DEBUG] ",
}

var (
	mu     sync.Mutex
	level            = LevelWarn
	output io.Writer = os.Stderr
)

// SetVerbose switches between LevelDebug and the default LevelWarn.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// IsVerbose reports whether debug output is enabled.
func IsVerbose() bool {
	return Enabled(LevelDebug)
}

// SetLevel sets the most verbose level that is printed.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// Enabled reports whether messages at l are printed.
func Enabled(l Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return l <= level
}

// SetOutput redirects log output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l > level {
		return
	}
	fmt.Fprintf(output, prefixes[l]+format+"\n", args...)
}

func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }

func Info(format string, args ...any) { logf(LevelInfo, format, args...) }

func Warn(format string, args ...any) { logf(LevelWarn, format, args...) }

func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section prints a header at info level.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if LevelInfo <= level {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
