// Package history records pipeline runs in a SQLite database under the state
// directory.
//
// Each run, successful or not, leaves one row: logical name, input, export
// format, recognizer, cue count, outcome and, on failure, the stage and error
// kind. The store is safe for concurrent writers; SQLITE_BUSY is retried with
// backoff.
package history
