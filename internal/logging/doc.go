// Package logging assembles structured slog loggers and formatting helpers used
// across mouthpiece.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so stage code automatically tags log lines
// with the run's correlation ID, stage, and logical name. NewFromConfig tees a
// debug-level JSON copy of every record into the configured log directory. The
// package also provides a no-op logger for tests and wiring code that cannot fail.
package logging
