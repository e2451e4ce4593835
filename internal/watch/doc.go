// Package watch re-runs a serialization whenever one of its input files
// changes. Events are filtered to the watched files, debounced, and each run
// is reported as a one-line status with an optional validation step.
package watch
