// Package config loads, normalizes, and validates shoebox configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and derives the consolidation directory tree
// from a single root. The Config type centralizes every knob the pipeline
// needs: source drives, extension allow-lists, quality-scoring weights,
// safety thresholds, and execution behaviour.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, lowercased extensions, and clear validation errors.
package config
