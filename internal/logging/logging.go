// Package logging provides structured diagnostics for the client.
//
// Stdout belongs to the game display, so log events go to a JSON file
// instead: by default one next to the executable, overridable with
// --log-file or FORZA_LOG.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultFile is the log file created next to the executable when no
// explicit path is configured.
const DefaultFile = "goforza.log"

// Logger wraps zerolog so call sites depend on this package rather
// than on zerolog directly.
type Logger struct {
	zerolog.Logger
}

// New returns a logger writing JSON lines to path, or to the default
// file next to the executable when path is empty.  Verbosity maps
// 0→info, 1→debug, ≥2→trace.  If the file cannot be opened the
// logger falls back to stderr rather than failing startup.
func New(path string, verbosity int) *Logger {
	l := zerolog.New(open(path)).
		Level(level(verbosity)).
		With().Timestamp().Logger()
	return &Logger{l}
}

// NewWriter returns a logger writing to w.  Used in tests.
func NewWriter(w io.Writer, verbosity int) *Logger {
	l := zerolog.New(w).
		Level(level(verbosity)).
		With().Timestamp().Logger()
	return &Logger{l}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

func level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.InfoLevel
	case verbosity == 1:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

func open(path string) io.Writer {
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return os.Stderr
		}
		path = filepath.Join(filepath.Dir(exe), DefaultFile)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stderr
	}
	return f
}
