package bookstore

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/bluemoxon/bluemoxon/internal/domain"
)

const (
	logActionInsertPublisher = "insert publisher"
	logActionSelectPublisher = "select publisher"
	logActionListPublishers  = "list publishers"
	logActionRetierPublisher = "retier publisher"
	logActionCountByPub      = "count books per publisher"

	logMsgPublisherInserted = "publisher inserted"
	logMsgPublishersListed  = "publishers listed"
	logMsgPublishersRetier  = "publisher tiers recomputed"

	logAttrPublisherID    = "publisher_id"
	logAttrPublisherCount = "publisher_count"
	logAttrChangedCount   = "changed_count"

	colName = "name"
	colTier = "tier"
)

func publisherColumns() []any {
	return []any{colID, colName, colTier, colCreatedAt}
}

// InsertPublisher persists a new publisher and returns it with identity and
// creation time populated. New publishers start unranked until the next retier run.
func (s *Store) InsertPublisher(ctx context.Context, publisher domain.Publisher) (domain.Publisher, error) {
	if err := publisher.Validate(); err != nil {
		return domain.Publisher{}, err
	}

	if publisher.ID == uuid.Nil {
		publisher.ID = uuid.New()
	}
	publisher.CreatedAt = time.Now().UTC()

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(publishersTableName).
		Rows(goqu.Record{
			colID:        publisher.ID,
			colName:      publisher.Name,
			colTier:      publisher.Tier,
			colCreatedAt: publisher.CreatedAt,
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return domain.Publisher{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, _, err := s.executeStatement(ctx, sqlQuery, logActionInsertPublisher); err != nil {
		if isUniqueViolation(err) {
			return domain.Publisher{}, ErrPublisherExists
		}

		return domain.Publisher{}, err
	}

	s.logOperation(logMsgPublisherInserted, logAttrPublisherID, publisher.ID.String())

	return publisher, nil
}

// PublisherByID retrieves a single publisher or ErrPublisherNotFound.
func (s *Store) PublisherByID(ctx context.Context, id uuid.UUID) (domain.Publisher, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(publishersTableName).
		Select(publisherColumns()...).
		Where(goqu.Ex{colID: id})

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return domain.Publisher{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	publishers, err := s.queryPublishers(ctx, sqlQuery, logActionSelectPublisher)
	if err != nil {
		return domain.Publisher{}, err
	}

	if len(publishers) == 0 {
		return domain.Publisher{}, ErrPublisherNotFound
	}

	return publishers[0], nil
}

// Publishers lists all publishers ordered by tier then name.
// Unranked publishers sort last.
func (s *Store) Publishers(ctx context.Context) (domain.Publishers, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(publishersTableName).
		Select(publisherColumns()...).
		Order(
			// unranked (tier 0) sorts after tiers 1..3
			goqu.L("CASE WHEN tier = 0 THEN 4 ELSE tier END").Asc(),
			goqu.I(colName).Asc(),
		)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	publishers, err := s.queryPublishers(ctx, sqlQuery, logActionListPublishers)
	if err != nil {
		return nil, err
	}

	s.logOperation(logMsgPublishersListed, logAttrPublisherCount, len(publishers))

	return publishers, nil
}

// RetierPublishers recomputes every publisher's tier from its current book
// count and returns the number of publishers whose tier changed.
//
// This is the administrative replacement for what used to be an HTTP
// endpoint; it is only reachable through the CLI.
func (s *Store) RetierPublishers(ctx context.Context) (int, error) {
	counts, err := s.booksPerPublisher(ctx)
	if err != nil {
		return 0, err
	}

	publishers, err := s.Publishers(WithStrongConsistency(ctx))
	if err != nil {
		return 0, err
	}

	changed := 0

	for _, publisher := range publishers {
		tier := domain.TierForBookCount(counts[publisher.ID])
		if tier == publisher.Tier {
			continue
		}

		updateStmt := goqu.Dialect(dialectPostgres).
			Update(publishersTableName).
			Set(goqu.Record{colTier: tier}).
			Where(goqu.Ex{colID: publisher.ID})

		sqlQuery, _, toSQLErr := updateStmt.ToSQL()
		if toSQLErr != nil {
			s.logBuildQueryError(toSQLErr)
			return changed, errors.Join(ErrBuildingQueryFailed, toSQLErr)
		}

		if _, _, execErr := s.executeStatement(ctx, sqlQuery, logActionRetierPublisher); execErr != nil {
			return changed, execErr
		}

		changed++
	}

	s.logOperation(logMsgPublishersRetier, logAttrChangedCount, changed)

	return changed, nil
}

// booksPerPublisher returns the book count per publisher ID.
func (s *Store) booksPerPublisher(ctx context.Context) (map[uuid.UUID]int, error) {
	countAlias := "book_count"

	selectStmt := goqu.Dialect(dialectPostgres).
		From(booksTableName).
		Select(goqu.C(colPublisherID), goqu.COUNT(goqu.Star()).As(countAlias)).
		Where(goqu.C(colPublisherID).IsNotNull()).
		GroupBy(goqu.C(colPublisherID))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := s.executeQuery(ctx, sqlQuery, logActionCountByPub)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(rows)

	counts := make(map[uuid.UUID]int)

	for rows.Next() {
		var publisherID uuid.UUID
		var count int64

		if scanErr := rows.Scan(&publisherID, &count); scanErr != nil {
			s.logScanRowError(scanErr)
			return nil, errors.Join(ErrScanningRowFailed, scanErr)
		}

		counts[publisherID] = int(count)
	}

	return counts, nil
}

// queryPublishers executes a select statement and scans all resulting publisher rows.
func (s *Store) queryPublishers(ctx context.Context, sqlQuery string, action string) (domain.Publishers, error) {
	rows, _, queryErr := s.executeQuery(ctx, sqlQuery, action)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(rows)

	publishers := make(domain.Publishers, 0)

	for rows.Next() {
		var publisher domain.Publisher
		var tier int64

		if scanErr := rows.Scan(&publisher.ID, &publisher.Name, &tier, &publisher.CreatedAt); scanErr != nil {
			s.logScanRowError(scanErr)
			return nil, errors.Join(ErrScanningRowFailed, scanErr)
		}

		publisher.Tier = int(tier)
		publishers = append(publishers, publisher)
	}

	return publishers, nil
}
