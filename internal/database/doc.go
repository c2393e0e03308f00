// Package database provides the connection pool for the trade log store.
//
// The bot runs fine without a database; the pool is created only when a
// Postgres target is configured for the journal.
package database
