// Package logging assembles structured slog loggers and formatting helpers used
// across battreminder.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standard field keys (component, event_type,
// error_hint, impact) so every poll loop emits records with the same shape.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
