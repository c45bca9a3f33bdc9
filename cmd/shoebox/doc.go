// Package main hosts the shoebox CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes each consolidation stage (scan, copy,
// analyze, consolidate) alongside the full run workflow, workspace status,
// metrics emission, log viewing, and configuration scaffolding. It
// centralizes configuration resolution and logger setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
