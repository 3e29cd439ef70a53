// Package logging assembles structured slog loggers and formatting helpers used
// across vibecodec.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standard field keys (component, state, source,
// event_type) that codec and library code attach to their log lines. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
