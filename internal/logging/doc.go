// Package logging assembles structured slog loggers and formatting helpers
// used across the pipeline.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can automatically
// tag log lines with run IDs, stage names, and drive labels. The package also
// provides a no-op logger for tests and wiring code that cannot fail, plus a
// retention sweep for aging log files.
//
// Prefer these constructors over hand-rolled slog setup so all components emit
// data with the same shape.
package logging
