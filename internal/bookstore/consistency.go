package bookstore

import (
	"context"

	"github.com/bluemoxon/bluemoxon/internal/bookstore/internal/adapters"
)

// WithStrongConsistency returns a context that signals Store reads
// should use the primary database for read-after-write guarantees.
//
// This is the default; handlers that modify rows and immediately read
// them back rely on it.
func WithStrongConsistency(ctx context.Context) context.Context {
	return adapters.WithStrongConsistency(ctx)
}

// WithEventualConsistency returns a context that signals Store reads
// may use a replica database, trading consistency for reduced load on
// the primary.
//
// The stats queries use this: aggregate counts can tolerate slightly
// stale data.
func WithEventualConsistency(ctx context.Context) context.Context {
	return adapters.WithEventualConsistency(ctx)
}
