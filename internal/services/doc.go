// Package services defines shared utilities consumed by the pipeline stages.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and drive
//     labels for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across stages, so the CLI can distinguish
//     fatal configuration problems from recoverable per-file errors.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
