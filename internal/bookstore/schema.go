package bookstore

import "context"

const (
	logActionMigrate  = "apply schema"
	logMsgSchemaReady = "schema applied"
)

// schemaDDL is the idempotent schema for the collection database.
// Applied by the migrate CLI command; safe to run repeatedly.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS publishers (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		tier SMALLINT NOT NULL DEFAULT 0 CHECK (tier BETWEEN 0 AND 3),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		publisher_id UUID REFERENCES publishers (id) ON DELETE SET NULL,
		edition TEXT,
		binding TEXT,
		condition TEXT,
		purchase_price_cents BIGINT CHECK (purchase_price_cents >= 0),
		provenance TEXT,
		acquired_at TIMESTAMPTZ,
		notes TEXT,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_books_publisher_id ON books (publisher_id)`,
	`CREATE INDEX IF NOT EXISTS idx_books_condition ON books (condition)`,
	`CREATE INDEX IF NOT EXISTS idx_books_acquired_at ON books (acquired_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		admin BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at)`,
}

// Migrate applies the schema DDL statement by statement.
func (s *Store) Migrate(ctx context.Context) error {
	for _, ddl := range schemaDDL {
		if _, _, err := s.executeStatement(ctx, ddl, logActionMigrate); err != nil {
			return err
		}
	}

	s.logOperation(logMsgSchemaReady)

	return nil
}
