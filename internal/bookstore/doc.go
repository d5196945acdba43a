// Package bookstore is the Postgres persistence layer of the collection server.
//
// It supports three database libraries through an internal adapter pattern:
// pgxpool.Pool (NewStoreFromPGXPool), database/sql (NewStoreFromSQLDB, used
// with the lib/pq driver) and sqlx.DB (NewStoreFromSQLX). All SQL is built
// with goqu's postgres dialect.
//
// Reads default to the primary database. When a replica pool is configured
// (NewStoreFromPGXPoolWithReplica), callers may mark a context with
// WithEventualConsistency to route reads to the replica; the stats queries
// do this.
//
// Book updates use optimistic concurrency: every row carries a version,
// updates match on it, and a stale version surfaces as ErrConcurrencyConflict
// which RetryOnConflict can transparently retry.
package bookstore
