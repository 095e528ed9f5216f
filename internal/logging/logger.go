// Package logging builds the leveled charm logger used by the CLI and the
// ensemble runner.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ParseLevel maps a level name to a log.Level. Supported values are
// "debug", "info", "warn" and "error" (case-insensitive). Unknown values
// default to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// New creates a timestamped logger writing to w.
func New(level string, w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(level),
		Prefix:          "gendrift",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
