// Package logx wraps github.com/charmbracelet/log behind the small surface
// the engine needs: a package-scoped logger with structured key/value pairs.
package logx

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the subset of *log.Logger the engine depends on, kept narrow so
// call sites don't reach for charmbracelet-specific options directly.
type Logger = log.Logger

var base = log.NewWithOptions(os.Stderr, log.Options{
	Level:           log.InfoLevel,
	ReportTimestamp: false,
})

// Configure adjusts the base logger's level and output format. format is
// "text" (default) or "json"; an unrecognised value falls back to text.
func Configure(level string, format string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: false}
	if format == "json" {
		opts.Formatter = log.JSONFormatter
	}
	l := log.NewWithOptions(w, opts)
	l.SetLevel(parseLevel(level))
	base = l
}

func parseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// For returns a sub-logger scoped to the named component.
func For(component string) *log.Logger {
	return base.With("component", component)
}
