package bookstore

import (
	"time"

	"github.com/google/uuid"

	"github.com/bluemoxon/bluemoxon/internal/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// BookFilter describes the criteria for listing books.
// It is built with BuildBookFilter and consumed by Store.Books, which
// translates it into a goqu where clause.
type BookFilter struct {
	publisherID   *uuid.UUID
	condition     *domain.ConditionGrade
	search        string
	acquiredFrom  time.Time
	acquiredUntil time.Time
	limit         uint
	offset        uint
}

// PublisherID returns the publisher criterion, nil when unset.
func (f BookFilter) PublisherID() *uuid.UUID { return f.publisherID }

// Condition returns the condition grade criterion, nil when unset.
func (f BookFilter) Condition() *domain.ConditionGrade { return f.condition }

// Search returns the title/author substring criterion, empty when unset.
func (f BookFilter) Search() string { return f.search }

// AcquiredFrom returns the lower acquisition date bound, zero when unset.
func (f BookFilter) AcquiredFrom() time.Time { return f.acquiredFrom }

// AcquiredUntil returns the upper acquisition date bound, zero when unset.
func (f BookFilter) AcquiredUntil() time.Time { return f.acquiredUntil }

// Limit returns the page size.
func (f BookFilter) Limit() uint { return f.limit }

// Offset returns the page offset.
func (f BookFilter) Offset() uint { return f.offset }

// BookFilterBuilder builds a BookFilter with a fluent interface.
// The zero criteria produce an unfiltered listing with the default page size.
type BookFilterBuilder struct {
	filter BookFilter
}

// BuildBookFilter starts building a BookFilter.
func BuildBookFilter() *BookFilterBuilder {
	return &BookFilterBuilder{filter: BookFilter{limit: defaultListLimit}}
}

// WithPublisher restricts the listing to books of one publisher.
func (b *BookFilterBuilder) WithPublisher(id uuid.UUID) *BookFilterBuilder {
	b.filter.publisherID = &id
	return b
}

// WithCondition restricts the listing to books of one condition grade.
func (b *BookFilterBuilder) WithCondition(grade domain.ConditionGrade) *BookFilterBuilder {
	b.filter.condition = &grade
	return b
}

// WithSearch restricts the listing to books whose title or author contains
// the given substring, case-insensitively.
func (b *BookFilterBuilder) WithSearch(s string) *BookFilterBuilder {
	b.filter.search = s
	return b
}

// AcquiredFrom restricts the listing to books acquired at or after the given time.
func (b *BookFilterBuilder) AcquiredFrom(t time.Time) *BookFilterBuilder {
	b.filter.acquiredFrom = t
	return b
}

// AcquiredUntil restricts the listing to books acquired at or before the given time.
func (b *BookFilterBuilder) AcquiredUntil(t time.Time) *BookFilterBuilder {
	b.filter.acquiredUntil = t
	return b
}

// WithLimit sets the page size, capped at the maximum listing size.
// A zero limit falls back to the default page size.
func (b *BookFilterBuilder) WithLimit(limit uint) *BookFilterBuilder {
	switch {
	case limit == 0:
		b.filter.limit = defaultListLimit
	case limit > maxListLimit:
		b.filter.limit = maxListLimit
	default:
		b.filter.limit = limit
	}

	return b
}

// WithOffset sets the page offset.
func (b *BookFilterBuilder) WithOffset(offset uint) *BookFilterBuilder {
	b.filter.offset = offset
	return b
}

// Finalize returns the built BookFilter.
func (b *BookFilterBuilder) Finalize() BookFilter {
	return b.filter
}
