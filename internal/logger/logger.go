// Package logger implements a small ring-buffer logger shared by every
// subsystem, used in place of fmt.Println/log.Print so that diagnostics can
// be filtered, tailed, or written to a file by the host without touching
// stdout directly.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Permission gates whether a log entry is recorded. Subsystems that log
// very frequently (e.g. the PPU, once per scanline) are passed a
// Permission so the host can silence them without editing call sites.
type Permission interface {
	AllowLogging() bool
}

// Allow is a Permission that always allows logging.
var Allow = allowPermission{}

type allowPermission struct{}

func (allowPermission) AllowLogging() bool { return true }

type entry struct {
	tag    string
	detail string
}

// Logger is a fixed-capacity ring buffer of log entries.
type Logger struct {
	mu       sync.Mutex
	capacity int
	entries  []entry
}

// NewLogger creates a Logger holding up to capacity entries; once full, the
// oldest entry is dropped to make room for the newest.
func NewLogger(capacity int) *Logger {
	return &Logger{capacity: capacity}
}

// Log records a pre-formatted detail against tag, subject to permission.
func (l *Logger) Log(permission Permission, tag string, detail interface{}) {
	if permission != nil && !permission.AllowLogging() {
		return
	}
	l.append(tag, formatDetail(detail))
}

// Logf records a printf-style detail against tag, subject to permission.
func (l *Logger) Logf(permission Permission, tag string, format string, args ...interface{}) {
	if permission != nil && !permission.AllowLogging() {
		return
	}
	l.append(tag, fmt.Sprintf(format, args...))
}

func formatDetail(detail interface{}) string {
	switch d := detail.(type) {
	case error:
		return d.Error()
	case fmt.Stringer:
		return d.String()
	case string:
		return d
	default:
		return fmt.Sprintf("%v", d)
	}
}

func (l *Logger) append(tag, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry{tag: tag, detail: detail})
	if l.capacity > 0 && len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Clear empties the log.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Write writes every recorded entry, oldest first, as "tag: detail\n".
func (l *Logger) Write(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var b strings.Builder
	for _, e := range l.entries {
		fmt.Fprintf(&b, "%s: %s\n", e.tag, e.detail)
	}
	io.WriteString(w, b.String())
}

// Tail writes the most recent n entries, oldest first.
func (l *Logger) Tail(w io.Writer, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := 0
	if n < len(l.entries) {
		start = len(l.entries) - n
	}
	var b strings.Builder
	for _, e := range l.entries[start:] {
		fmt.Fprintf(&b, "%s: %s\n", e.tag, e.detail)
	}
	io.WriteString(w, b.String())
}

// Central is the process-wide logger instance, sized generously so a full
// frame's worth of subsystem chatter can be retrieved by a debugger
// frontend after the fact.
var Central = NewLogger(4096)

// Log is a convenience wrapper around Central.Log.
func Log(permission Permission, tag string, detail interface{}) {
	Central.Log(permission, tag, detail)
}

// Logf is a convenience wrapper around Central.Logf.
func Logf(permission Permission, tag string, format string, args ...interface{}) {
	Central.Logf(permission, tag, format, args...)
}
