package bookstore

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func Test_IsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "pgx_unique_violation",
			err:      &pgconn.PgError{Code: "23505"},
			expected: true,
		},
		{
			name:     "pq_unique_violation",
			err:      &pq.Error{Code: "23505"},
			expected: true,
		},
		{
			name:     "joined_with_exec_sentinel",
			err:      errors.Join(ErrExecFailed, &pgconn.PgError{Code: "23505"}),
			expected: true,
		},
		{
			name:     "other_pgx_error",
			err:      &pgconn.PgError{Code: "23503"},
			expected: false,
		},
		{
			name:     "plain_error",
			err:      errors.New("boom"),
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isUniqueViolation(tt.err))
		})
	}
}
