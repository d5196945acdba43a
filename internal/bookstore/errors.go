package bookstore

import "errors"

var (
	// ErrNilDatabaseConnection is returned when a Store is constructed without a database connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrConcurrencyConflict is returned when a version-checked update affected no rows
	// because the stored row carries a different version than expected.
	ErrConcurrencyConflict = errors.New("concurrency conflict, no rows were affected")

	// ErrBookNotFound is returned when no book with the requested ID exists.
	ErrBookNotFound = errors.New("book not found")

	// ErrPublisherNotFound is returned when no publisher with the requested ID exists.
	ErrPublisherNotFound = errors.New("publisher not found")

	// ErrPublisherExists is returned when inserting a publisher whose name is already taken.
	ErrPublisherExists = errors.New("publisher with this name already exists")

	// ErrUserExists is returned when inserting a user whose email is already taken.
	ErrUserExists = errors.New("user with this email already exists")

	// ErrUserNotFound is returned when no user with the requested email or ID exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound is returned when no session with the requested token exists.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBuildingQueryFailed is returned when goqu fails to render a statement to SQL.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrQueryingFailed is returned when a select statement fails to execute.
	ErrQueryingFailed = errors.New("querying the database failed")

	// ErrExecFailed is returned when an insert, update or delete statement fails to execute.
	ErrExecFailed = errors.New("executing the statement failed")

	// ErrScanningRowFailed is returned when a result row cannot be scanned.
	ErrScanningRowFailed = errors.New("scanning database row failed")

	// ErrGettingRowsAffectedFailed is returned when the affected row count cannot be read.
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected count failed")
)
