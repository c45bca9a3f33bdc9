// Package logs reads the run log written under the configured log
// directory. It backs the CLI log viewer: tailing the last lines of a
// run with bounded memory, and following the file while a run is in
// progress. Callers supply a context so follow mode shuts down cleanly
// when the CLI exits.
package logs
