// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Only container-level metadata is requested (-show_format): shoebox needs
// the creation_time tag plus duration and size for logging, never per-stream
// detail.
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
//
// Helper methods on Result parse the creation_time tag across the timestamp
// shapes different muxers emit.
package ffprobe
