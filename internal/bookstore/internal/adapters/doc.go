// Package adapters provides database adapter implementations for the PostgreSQL book store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the book store to work seamlessly with any
// supported database connection type.
//
// The pgx adapter additionally supports an optional read replica pool; reads are routed
// to the replica only when the request context carries the eventual consistency level.
package adapters
