// Package operations orchestrates the pipeline: load, validate, clean,
// analyze, export and report run as sequential steps over a shared
// operation state. A failed step marks the remaining ones skipped; the
// run manifest records what happened and is persisted next to the
// exports.
package operations
