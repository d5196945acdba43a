package bookstore_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bluemoxon/bluemoxon/internal/bookstore"
	"github.com/bluemoxon/bluemoxon/internal/domain"
)

func Test_BookFilterBuilder(t *testing.T) {
	publisherID := uuid.New()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name     string
		build    func() bookstore.BookFilter
		validate func(t *testing.T, f bookstore.BookFilter)
	}{
		{
			name: "empty_builder_yields_default_page",
			build: func() bookstore.BookFilter {
				return bookstore.BuildBookFilter().Finalize()
			},
			validate: func(t *testing.T, f bookstore.BookFilter) {
				assert.Nil(t, f.PublisherID())
				assert.Nil(t, f.Condition())
				assert.Empty(t, f.Search())
				assert.True(t, f.AcquiredFrom().IsZero())
				assert.True(t, f.AcquiredUntil().IsZero())
				assert.Equal(t, uint(50), f.Limit())
				assert.Equal(t, uint(0), f.Offset())
			},
		},
		{
			name: "publisher_only_filter",
			build: func() bookstore.BookFilter {
				return bookstore.BuildBookFilter().
					WithPublisher(publisherID).
					Finalize()
			},
			validate: func(t *testing.T, f bookstore.BookFilter) {
				if assert.NotNil(t, f.PublisherID()) {
					assert.Equal(t, publisherID, *f.PublisherID())
				}
				assert.Nil(t, f.Condition())
			},
		},
		{
			name: "condition_and_search_filter",
			build: func() bookstore.BookFilter {
				return bookstore.BuildBookFilter().
					WithCondition(domain.ConditionFine).
					WithSearch("dickens").
					Finalize()
			},
			validate: func(t *testing.T, f bookstore.BookFilter) {
				if assert.NotNil(t, f.Condition()) {
					assert.Equal(t, domain.ConditionFine, *f.Condition())
				}
				assert.Equal(t, "dickens", f.Search())
			},
		},
		{
			name: "acquired_range_filter",
			build: func() bookstore.BookFilter {
				return bookstore.BuildBookFilter().
					AcquiredFrom(from).
					AcquiredUntil(until).
					Finalize()
			},
			validate: func(t *testing.T, f bookstore.BookFilter) {
				assert.Equal(t, from, f.AcquiredFrom())
				assert.Equal(t, until, f.AcquiredUntil())
			},
		},
		{
			name: "limit_and_offset_pass_through",
			build: func() bookstore.BookFilter {
				return bookstore.BuildBookFilter().
					WithLimit(25).
					WithOffset(75).
					Finalize()
			},
			validate: func(t *testing.T, f bookstore.BookFilter) {
				assert.Equal(t, uint(25), f.Limit())
				assert.Equal(t, uint(75), f.Offset())
			},
		},
		{
			name: "zero_limit_falls_back_to_default",
			build: func() bookstore.BookFilter {
				return bookstore.BuildBookFilter().
					WithLimit(0).
					Finalize()
			},
			validate: func(t *testing.T, f bookstore.BookFilter) {
				assert.Equal(t, uint(50), f.Limit())
			},
		},
		{
			name: "oversized_limit_is_capped",
			build: func() bookstore.BookFilter {
				return bookstore.BuildBookFilter().
					WithLimit(10000).
					Finalize()
			},
			validate: func(t *testing.T, f bookstore.BookFilter) {
				assert.Equal(t, uint(500), f.Limit())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := tt.build()
			tt.validate(t, filter)
		})
	}
}
