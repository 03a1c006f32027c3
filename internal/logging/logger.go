// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Logger is the shared logger. Setup replaces it; until then it writes
// colored console output at info level.
var Logger zerolog.Logger

func init() {
	Logger = newLogger(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, zerolog.InfoLevel)
	log.Logger = Logger
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Setup configures level and output format. format is "console" or "json".
func Setup(level, format string, out io.Writer) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if out == nil {
		out = os.Stderr
	}

	switch format {
	case FormatConsole, "":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	case FormatJSON:
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	Logger = newLogger(out, lvl)
	log.Logger = Logger
	return nil
}

// With returns a child logger tagged with a component name
func With(component string) *zerolog.Logger {
	l := Logger.With().Str("component", component).Logger()
	return &l
}

// Info logs an info message.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Error logs an error message.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Warn logs a warning message.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Debug logs a debug message.
func Debug() *zerolog.Event {
	return Logger.Debug()
}
