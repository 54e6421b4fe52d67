// Package logging builds the structured logger shared by the CLI and the
// scan engine.
package logging

import (
	"io"
	"log/slog"

	charmlog "charm.land/log/v2"
)

// New returns a logger writing to w. It logs warnings and above, or
// everything from debug up when verbose is set.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := charmlog.WarnLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	h := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Prefix:          "sensigrep",
		ReportTimestamp: verbose,
	})
	return slog.New(h)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
