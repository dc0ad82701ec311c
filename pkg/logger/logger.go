// Package logger wires zerolog for the whole application. Components receive
// a zerolog.Logger tagged with their component name rather than reaching for
// a global.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var root zerolog.Logger = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
	w.Out = os.Stderr
})).With().Timestamp().Logger()

// Init configures the root logger. Level accepts debug, info, warn, error
// and fatal; anything else falls back to info.
func Init(level string) {
	root = root.Level(parseLevel(level))
}

// InitWriter is Init with an explicit output writer, used by tests to
// capture log output.
func InitWriter(level string, w io.Writer) {
	root = zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(level))
}

// Component returns a logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	return root.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
