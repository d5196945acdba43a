// Package stats computes the read-only aggregates served by the stats API:
// the collection overview (the counts the frontend badge renders), counts
// per condition grade, counts per publisher tier, and recent acquisitions.
//
// Storage scans live in the bookstore package; the shaping here is pure and
// unit-testable without a database. All stats reads run with eventual
// consistency: slightly stale counts are acceptable.
package stats

import (
	"context"

	"github.com/samber/lo"

	"github.com/bluemoxon/bluemoxon/internal/bookstore"
	"github.com/bluemoxon/bluemoxon/internal/domain"
)

// Storage defines the interface needed by the Service for aggregate queries.
type Storage interface {
	StatsOverview(ctx context.Context) (bookstore.OverviewRow, error)
	CountsByCondition(ctx context.Context) ([]bookstore.ConditionCount, error)
	CountsByPublisherTier(ctx context.Context) ([]bookstore.TierCount, error)
	RecentAcquisitions(ctx context.Context, limit uint) (domain.Books, error)
}

// Overview is the aggregate summary of the whole collection.
//
// TotalPriceCents and AveragePriceCents cover only books with a recorded
// price; a recorded price of zero is included in both. BooksUnpriced counts
// books with no recorded price at all.
type Overview struct {
	BookCount         int64 `json:"book_count"`
	PublisherCount    int64 `json:"publisher_count"`
	BooksPriced       int64 `json:"books_priced"`
	BooksUnpriced     int64 `json:"books_unpriced"`
	TotalPriceCents   int64 `json:"total_price_cents"`
	AveragePriceCents int64 `json:"average_price_cents"`
}

// ConditionBucket is one entry of the per-condition breakdown.
type ConditionBucket struct {
	Condition string `json:"condition"`
	Count     int64  `json:"count"`
}

// TierBucket is one entry of the per-tier breakdown.
type TierBucket struct {
	Tier  int   `json:"tier"`
	Count int64 `json:"count"`
}

// ungradedBucketName labels books without a recorded condition grade.
const ungradedBucketName = "ungraded"

// Service answers the stats queries of the HTTP API.
type Service struct {
	storage Storage
}

// NewService creates a Service with the provided storage dependency.
func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// Overview returns the collection summary.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	row, err := s.storage.StatsOverview(bookstore.WithEventualConsistency(ctx))
	if err != nil {
		return Overview{}, err
	}

	return BuildOverview(row), nil
}

// ByCondition returns one bucket per condition grade, worst to best, with
// zero counts for unrepresented grades, followed by an ungraded bucket when
// any book lacks a grade.
func (s *Service) ByCondition(ctx context.Context) ([]ConditionBucket, error) {
	counts, err := s.storage.CountsByCondition(bookstore.WithEventualConsistency(ctx))
	if err != nil {
		return nil, err
	}

	return ShapeConditionBuckets(counts), nil
}

// ByPublisherTier returns one bucket per tier 0..3, with zero counts for
// unrepresented tiers.
func (s *Service) ByPublisherTier(ctx context.Context) ([]TierBucket, error) {
	counts, err := s.storage.CountsByPublisherTier(bookstore.WithEventualConsistency(ctx))
	if err != nil {
		return nil, err
	}

	return ShapeTierBuckets(counts), nil
}

// RecentAcquisitions returns the most recently acquired books, newest first.
func (s *Service) RecentAcquisitions(ctx context.Context, limit uint) (domain.Books, error) {
	return s.storage.RecentAcquisitions(bookstore.WithEventualConsistency(ctx), limit)
}

// BuildOverview derives the overview from its raw aggregate row.
// This is a pure function with no side effects.
func BuildOverview(row bookstore.OverviewRow) Overview {
	overview := Overview{
		BookCount:       row.BookCount,
		PublisherCount:  row.PublisherCount,
		BooksPriced:     row.PricedCount,
		BooksUnpriced:   row.BookCount - row.PricedCount,
		TotalPriceCents: row.TotalPriceCents,
	}

	if row.PricedCount > 0 {
		overview.AveragePriceCents = row.TotalPriceCents / row.PricedCount
	}

	return overview
}

// ShapeConditionBuckets turns raw per-grade counts into the full ordered
// breakdown. This is a pure function with no side effects.
func ShapeConditionBuckets(counts []bookstore.ConditionCount) []ConditionBucket {
	byGrade := make(map[domain.ConditionGrade]int64, len(counts))
	ungraded := int64(0)

	for _, entry := range counts {
		if entry.Grade == nil {
			ungraded += entry.Count
			continue
		}

		byGrade[*entry.Grade] += entry.Count
	}

	buckets := lo.Map(domain.AllConditionGrades(), func(grade domain.ConditionGrade, _ int) ConditionBucket {
		return ConditionBucket{Condition: grade.String(), Count: byGrade[grade]}
	})

	if ungraded > 0 {
		buckets = append(buckets, ConditionBucket{Condition: ungradedBucketName, Count: ungraded})
	}

	return buckets
}

// ShapeTierBuckets turns raw per-tier counts into the full ordered breakdown.
// This is a pure function with no side effects.
func ShapeTierBuckets(counts []bookstore.TierCount) []TierBucket {
	grouped := make(map[int]int64, len(counts))
	for _, entry := range counts {
		grouped[entry.Tier] += entry.Count
	}

	buckets := make([]TierBucket, 0, domain.MaxTier+1)
	for tier := domain.TierUnranked; tier <= domain.MaxTier; tier++ {
		buckets = append(buckets, TierBucket{Tier: tier, Count: grouped[tier]})
	}

	return buckets
}
