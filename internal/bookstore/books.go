package bookstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/bluemoxon/bluemoxon/internal/domain"
)

const (
	logActionInsertBook = "insert book"
	logActionSelectBook = "select book"
	logActionListBooks  = "list books"
	logActionUpdateBook = "update book"
	logActionDeleteBook = "delete book"

	logMsgBookInserted = "book inserted"
	logMsgBooksListed  = "books listed"
	logMsgBookUpdated  = "book updated"
	logMsgBookDeleted  = "book deleted"

	logAttrBookID    = "book_id"
	logAttrBookCount = "book_count"

	colID                 = "id"
	colTitle              = "title"
	colAuthor             = "author"
	colPublisherID        = "publisher_id"
	colEdition            = "edition"
	colBinding            = "binding"
	colCondition          = "condition"
	colPurchasePriceCents = "purchase_price_cents"
	colProvenance         = "provenance"
	colAcquiredAt         = "acquired_at"
	colNotes              = "notes"
	colVersion            = "version"
	colCreatedAt          = "created_at"
	colUpdatedAt          = "updated_at"
)

// bookColumns is the select list shared by every book query; the scan order
// of bookRow depends on it.
func bookColumns() []any {
	return []any{
		colID, colTitle, colAuthor, colPublisherID, colEdition, colBinding, colCondition,
		colPurchasePriceCents, colProvenance, colAcquiredAt, colNotes,
		colVersion, colCreatedAt, colUpdatedAt,
	}
}

// bookRow carries the raw scanned values of one book row.
type bookRow struct {
	id                 uuid.UUID
	title              string
	author             string
	publisherID        uuid.NullUUID
	edition            sql.NullString
	binding            sql.NullString
	condition          sql.NullString
	purchasePriceCents sql.NullInt64
	provenance         sql.NullString
	acquiredAt         sql.NullTime
	notes              sql.NullString
	version            int64
	createdAt          time.Time
	updatedAt          time.Time
}

func (r *bookRow) scanDests() []any {
	return []any{
		&r.id, &r.title, &r.author, &r.publisherID, &r.edition, &r.binding, &r.condition,
		&r.purchasePriceCents, &r.provenance, &r.acquiredAt, &r.notes,
		&r.version, &r.createdAt, &r.updatedAt,
	}
}

func (r bookRow) toDomain() domain.Book {
	book := domain.Book{
		ID:        r.id,
		Title:     r.title,
		Author:    r.author,
		Version:   uint(r.version),
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}

	if r.publisherID.Valid {
		id := r.publisherID.UUID
		book.PublisherID = &id
	}
	if r.edition.Valid {
		book.Edition = &r.edition.String
	}
	if r.binding.Valid {
		book.Binding = &r.binding.String
	}
	if r.condition.Valid {
		grade := domain.ConditionGrade(r.condition.String)
		book.Condition = &grade
	}
	if r.purchasePriceCents.Valid {
		book.PurchasePriceCents = &r.purchasePriceCents.Int64
	}
	if r.provenance.Valid {
		book.Provenance = &r.provenance.String
	}
	if r.acquiredAt.Valid {
		book.AcquiredAt = &r.acquiredAt.Time
	}
	if r.notes.Valid {
		book.Notes = &r.notes.String
	}

	return book
}

// bookRecord maps a domain book to the goqu record used for inserts and updates.
func bookRecord(book domain.Book) goqu.Record {
	return goqu.Record{
		colTitle:              book.Title,
		colAuthor:             book.Author,
		colPublisherID:        nullableUUID(book.PublisherID),
		colEdition:            nullableString(book.Edition),
		colBinding:            nullableString(book.Binding),
		colCondition:          nullableGrade(book.Condition),
		colPurchasePriceCents: nullableInt64(book.PurchasePriceCents),
		colProvenance:         nullableString(book.Provenance),
		colAcquiredAt:         nullableTime(book.AcquiredAt),
		colNotes:              nullableString(book.Notes),
	}
}

// InsertBook persists a new book and returns it with identity, version and
// timestamps populated.
func (s *Store) InsertBook(ctx context.Context, book domain.Book) (domain.Book, error) {
	if err := book.Validate(); err != nil {
		return domain.Book{}, err
	}

	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}

	now := time.Now().UTC()
	book.Version = 1
	book.CreatedAt = now
	book.UpdatedAt = now

	record := bookRecord(book)
	record[colID] = book.ID
	record[colVersion] = book.Version
	record[colCreatedAt] = book.CreatedAt
	record[colUpdatedAt] = book.UpdatedAt

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(booksTableName).
		Rows(record)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return domain.Book{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, _, err := s.executeStatement(ctx, sqlQuery, logActionInsertBook); err != nil {
		return domain.Book{}, err
	}

	s.logOperation(logMsgBookInserted, logAttrBookID, book.ID.String())

	return book, nil
}

// BookByID retrieves a single book or ErrBookNotFound.
func (s *Store) BookByID(ctx context.Context, id uuid.UUID) (domain.Book, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(booksTableName).
		Select(bookColumns()...).
		Where(goqu.Ex{colID: id})

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return domain.Book{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	books, err := s.queryBooks(ctx, sqlQuery, logActionSelectBook)
	if err != nil {
		return domain.Book{}, err
	}

	if len(books) == 0 {
		return domain.Book{}, ErrBookNotFound
	}

	return books[0], nil
}

// Books lists books matching the filter, ordered by title and creation time.
func (s *Store) Books(ctx context.Context, filter BookFilter) (domain.Books, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(booksTableName).
		Select(bookColumns()...).
		Order(goqu.I(colTitle).Asc(), goqu.I(colCreatedAt).Asc(), goqu.I(colID).Asc()).
		Limit(filter.Limit()).
		Offset(filter.Offset())

	selectStmt = addBookWhereClause(filter, selectStmt)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	books, err := s.queryBooks(ctx, sqlQuery, logActionListBooks)
	if err != nil {
		return nil, err
	}

	s.logOperation(logMsgBooksListed, logAttrBookCount, len(books))

	return books, nil
}

// UpdateBook persists changes to an existing book using optimistic concurrency:
// the update only applies when the stored row still carries book.Version.
// On success the returned book carries the incremented version.
// A stale version yields ErrConcurrencyConflict; a missing row yields ErrBookNotFound.
func (s *Store) UpdateBook(ctx context.Context, book domain.Book) (domain.Book, error) {
	if err := book.Validate(); err != nil {
		return domain.Book{}, err
	}

	now := time.Now().UTC()

	record := bookRecord(book)
	record[colVersion] = book.Version + 1
	record[colUpdatedAt] = now

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(booksTableName).
		Set(record).
		Where(goqu.Ex{colID: book.ID, colVersion: book.Version})

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return domain.Book{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, _, execErr := s.executeStatement(ctx, sqlQuery, logActionUpdateBook)
	if execErr != nil {
		return domain.Book{}, execErr
	}

	if rowsAffected == 0 {
		// Zero rows means either the book is gone or the version is stale.
		if _, lookupErr := s.BookByID(WithStrongConsistency(ctx), book.ID); lookupErr != nil {
			if errors.Is(lookupErr, ErrBookNotFound) {
				return domain.Book{}, ErrBookNotFound
			}

			return domain.Book{}, lookupErr
		}

		return domain.Book{}, ErrConcurrencyConflict
	}

	book.Version++
	book.UpdatedAt = now

	s.logOperation(logMsgBookUpdated, logAttrBookID, book.ID.String())

	return book, nil
}

// DeleteBook removes a book or returns ErrBookNotFound.
func (s *Store) DeleteBook(ctx context.Context, id uuid.UUID) error {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(booksTableName).
		Where(goqu.Ex{colID: id})

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, _, execErr := s.executeStatement(ctx, sqlQuery, logActionDeleteBook)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return ErrBookNotFound
	}

	s.logOperation(logMsgBookDeleted, logAttrBookID, id.String())

	return nil
}

// queryBooks executes a select statement and scans all resulting book rows.
func (s *Store) queryBooks(ctx context.Context, sqlQuery string, action string) (domain.Books, error) {
	rows, _, queryErr := s.executeQuery(ctx, sqlQuery, action)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(rows)

	books := make(domain.Books, 0)

	for rows.Next() {
		row := bookRow{}
		if scanErr := rows.Scan(row.scanDests()...); scanErr != nil {
			s.logScanRowError(scanErr)
			return nil, errors.Join(ErrScanningRowFailed, scanErr)
		}

		books = append(books, row.toDomain())
	}

	return books, nil
}

// addBookWhereClause translates a BookFilter into goqu where expressions.
func addBookWhereClause(filter BookFilter, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	expressions := make([]goqu.Expression, 0)

	if filter.PublisherID() != nil {
		expressions = append(expressions, goqu.Ex{colPublisherID: *filter.PublisherID()})
	}

	if filter.Condition() != nil {
		expressions = append(expressions, goqu.Ex{colCondition: filter.Condition().String()})
	}

	if filter.Search() != "" {
		pattern := fmt.Sprintf("%%%s%%", filter.Search())
		expressions = append(
			expressions,
			goqu.Or(
				goqu.I(colTitle).ILike(pattern),
				goqu.I(colAuthor).ILike(pattern),
			),
		)
	}

	if !filter.AcquiredFrom().IsZero() {
		expressions = append(expressions, goqu.I(colAcquiredAt).Gte(filter.AcquiredFrom()))
	}

	if !filter.AcquiredUntil().IsZero() {
		expressions = append(expressions, goqu.I(colAcquiredAt).Lte(filter.AcquiredUntil()))
	}

	if len(expressions) == 0 {
		return selectStmt
	}

	return selectStmt.Where(goqu.And(expressions...))
}

// nullableString unwraps an optional string for SQL rendering; nil becomes NULL.
func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullableInt64 unwraps an optional int64 for SQL rendering; nil becomes NULL.
// A pointed-to zero is rendered as 0, never as NULL.
func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullableTime unwraps an optional time for SQL rendering; nil becomes NULL.
func nullableTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullableUUID unwraps an optional UUID for SQL rendering; nil becomes NULL.
func nullableUUID(v *uuid.UUID) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullableGrade unwraps an optional condition grade for SQL rendering; nil becomes NULL.
func nullableGrade(v *domain.ConditionGrade) any {
	if v == nil {
		return nil
	}
	return v.String()
}
