// Package logger provides levelled logging for the assetsync CLI.
// Debug and info messages are printed to stderr only when verbose mode is
// enabled via the --verbose flag. Warnings and errors are always printed,
// because they report items and groups the pipeline dropped.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing and for the TUI, which owns the terminal.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(always bool, level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if always || verbose {
		fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "DEBUG", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "INFO", format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	write(true, "WARN", format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	write(true, "ERROR", format, args...)
}

// Scope prefixes every message with a fixed label, e.g. a region or group.
type Scope string

func (s Scope) prefix(format string) string {
	return string(s) + ": " + format
}

// Debug prints a scoped message if verbose mode is enabled.
func (s Scope) Debug(format string, args ...any) {
	Debug(s.prefix(format), args...)
}

// Info prints a scoped informational message if verbose mode is enabled.
func (s Scope) Info(format string, args ...any) {
	Info(s.prefix(format), args...)
}

// Warn prints a scoped warning.
func (s Scope) Warn(format string, args ...any) {
	Warn(s.prefix(format), args...)
}

// Error prints a scoped error.
func (s Scope) Error(format string, args ...any) {
	Error(s.prefix(format), args...)
}
