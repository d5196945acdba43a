package bookstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/bluemoxon/bluemoxon/internal/domain"
)

const (
	logActionStatsOverview   = "stats overview"
	logActionStatsConditions = "stats counts per condition"
	logActionStatsTiers      = "stats counts per publisher tier"
	logActionStatsRecent     = "stats recent acquisitions"

	aliasBookCount      = "book_count"
	aliasPricedCount    = "priced_count"
	aliasTotalPrice     = "total_price_cents"
	aliasPublisherCount = "publisher_count"
)

// OverviewRow carries the raw aggregate values behind the stats overview.
// TotalPriceCents sums only recorded prices; a recorded zero contributes
// zero but still counts into PricedCount.
type OverviewRow struct {
	BookCount       int64
	PricedCount     int64
	TotalPriceCents int64
	PublisherCount  int64
}

// ConditionCount is the number of books carrying one condition grade.
// Grade is nil for ungraded books.
type ConditionCount struct {
	Grade *domain.ConditionGrade
	Count int64
}

// TierCount is the number of books published by publishers of one tier.
// Books without a publisher fall into the unranked tier.
type TierCount struct {
	Tier  int
	Count int64
}

// StatsOverview runs the aggregate query backing the stats overview endpoint.
func (s *Store) StatsOverview(ctx context.Context) (OverviewRow, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(booksTableName).
		Select(
			goqu.COUNT(goqu.Star()).As(aliasBookCount),
			goqu.COUNT(goqu.C(colPurchasePriceCents)).As(aliasPricedCount),
			goqu.COALESCE(goqu.SUM(goqu.C(colPurchasePriceCents)), 0).As(aliasTotalPrice),
			goqu.L("(SELECT COUNT(*) FROM "+publishersTableName+")").As(aliasPublisherCount),
		)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return OverviewRow{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := s.executeQuery(ctx, sqlQuery, logActionStatsOverview)
	if queryErr != nil {
		return OverviewRow{}, queryErr
	}
	defer s.closeRows(rows)

	var row OverviewRow

	if rows.Next() {
		if scanErr := rows.Scan(&row.BookCount, &row.PricedCount, &row.TotalPriceCents, &row.PublisherCount); scanErr != nil {
			s.logScanRowError(scanErr)
			return OverviewRow{}, errors.Join(ErrScanningRowFailed, scanErr)
		}
	}

	return row, nil
}

// CountsByCondition returns the book count per condition grade, including
// one entry with a nil grade for ungraded books when any exist.
func (s *Store) CountsByCondition(ctx context.Context) ([]ConditionCount, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(booksTableName).
		Select(goqu.C(colCondition), goqu.COUNT(goqu.Star()).As(aliasBookCount)).
		GroupBy(goqu.C(colCondition))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := s.executeQuery(ctx, sqlQuery, logActionStatsConditions)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(rows)

	counts := make([]ConditionCount, 0)

	for rows.Next() {
		var grade sql.NullString
		var count int64

		if scanErr := rows.Scan(&grade, &count); scanErr != nil {
			s.logScanRowError(scanErr)
			return nil, errors.Join(ErrScanningRowFailed, scanErr)
		}

		entry := ConditionCount{Count: count}
		if grade.Valid {
			g := domain.ConditionGrade(grade.String)
			entry.Grade = &g
		}

		counts = append(counts, entry)
	}

	return counts, nil
}

// CountsByPublisherTier returns the book count per publisher tier.
// Books without a publisher are counted as unranked (tier 0).
func (s *Store) CountsByPublisherTier(ctx context.Context) ([]TierCount, error) {
	tierExpr := goqu.L("COALESCE(?, 0)", goqu.I("p.tier"))

	selectStmt := goqu.Dialect(dialectPostgres).
		From(goqu.T(booksTableName).As("b")).
		LeftJoin(
			goqu.T(publishersTableName).As("p"),
			goqu.On(goqu.Ex{"b." + colPublisherID: goqu.I("p." + colID)}),
		).
		Select(tierExpr.As(colTier), goqu.COUNT(goqu.Star()).As(aliasBookCount)).
		GroupBy(tierExpr).
		Order(tierExpr.Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := s.executeQuery(ctx, sqlQuery, logActionStatsTiers)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(rows)

	counts := make([]TierCount, 0)

	for rows.Next() {
		var tier int64
		var count int64

		if scanErr := rows.Scan(&tier, &count); scanErr != nil {
			s.logScanRowError(scanErr)
			return nil, errors.Join(ErrScanningRowFailed, scanErr)
		}

		counts = append(counts, TierCount{Tier: int(tier), Count: count})
	}

	return counts, nil
}

// RecentAcquisitions returns the most recently acquired books, newest first.
// Books without an acquisition date sort last.
func (s *Store) RecentAcquisitions(ctx context.Context, limit uint) (domain.Books, error) {
	if limit == 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(booksTableName).
		Select(bookColumns()...).
		Order(
			goqu.I(colAcquiredAt).Desc().NullsLast(),
			goqu.I(colCreatedAt).Desc(),
		).
		Limit(limit)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return s.queryBooks(ctx, sqlQuery, logActionStatsRecent)
}
