// Package archive persists the game history tables fetched from the kxo
// engine, keyed by the id of the client run that fetched them.
//
// Two Store implementations are provided:
//
//   - SQLiteStore keeps records in a SQLite database whose schema is applied
//     from embedded migrations on open.
//   - InMemoryStore keeps records in process memory; it is used when no
//     archive path is configured and in tests.
//
// Only non-empty history slots are stored. Saving the same run twice
// replaces the records of matching slots.
package archive
