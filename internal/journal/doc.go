// Package journal records one entry per trading action.
//
// The CSV recorder is the session log: one append-only file per run, human
// readable, safe to tail. The trade log writer batches the same entries into
// Postgres when a database is configured. MultiRecorder fans an entry out to
// both.
package journal
