// Package log centralizes zerolog setup so every package logs through the
// same chained Str/Int64/Msg idiom instead of fmt or the stdlib logger.
package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// base is the process-wide logger. Level and output remain a collaborator
// concern (spec's logging-setup boundary); this wrapper only fixes the
// format and timestamp field so every caller is consistent.
var base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

// SetLevel adjusts the minimum logged level, e.g. from a config flag.
func SetLevel(level zerolog.Level) {
	base = base.Level(level)
}

// With returns a logger with a bound component name, for per-package use:
//
//	var log = rlog.With("raft")
func With(component string) zerolog.Logger {
	return base.With().Str("component", component).Logger()
}

// Trace starts a trace-level event.
func Trace() *zerolog.Event { return base.Trace() }

// Debug starts a debug-level event.
func Debug() *zerolog.Event { return base.Debug() }

// Info starts an info-level event.
func Info() *zerolog.Event { return base.Info() }

// Warn starts a warn-level event.
func Warn() *zerolog.Event { return base.Warn() }

// Error starts an error-level event.
func Error() *zerolog.Event { return base.Error() }

// Fatal starts a fatal-level event; zerolog calls os.Exit(1) after logging.
func Fatal() *zerolog.Event { return base.Fatal() }
