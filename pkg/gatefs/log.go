package gatefs

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the console logger the mediator and CLI share. All
// records carry a "lib" field so gatefs output is distinguishable when
// embedded in a host application's log stream.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}).
		Level(level).
		With().
		Timestamp().
		Str("lib", "gatefs").
		Logger()
}

// NewTestLogger returns a quiet logger for tests; pass a nonzero
// verbose to see debug output while chasing a failure.
func NewTestLogger(w io.Writer, verbose int) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose > 0 {
		level = zerolog.DebugLevel
	}
	return NewLogger(w, level)
}

// LogLevelFromString parses level names like "debug" or "WARN".
func LogLevelFromString(levelStr string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(levelStr))
}

// DefaultLogger logs warnings and errors to stderr.
func DefaultLogger() zerolog.Logger {
	return NewLogger(os.Stderr, zerolog.WarnLevel)
}
