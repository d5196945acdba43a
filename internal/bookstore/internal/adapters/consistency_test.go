package adapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bluemoxon/bluemoxon/internal/bookstore/internal/adapters"
)

func Test_GetConsistencyLevel_DefaultsToStrong(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, adapters.StrongConsistency, adapters.GetConsistencyLevel(ctx))
}

func Test_GetConsistencyLevel_RoundTrip(t *testing.T) {
	ctx := adapters.WithEventualConsistency(context.Background())
	assert.Equal(t, adapters.EventualConsistency, adapters.GetConsistencyLevel(ctx))

	ctx = adapters.WithStrongConsistency(ctx)
	assert.Equal(t, adapters.StrongConsistency, adapters.GetConsistencyLevel(ctx))
}

func Test_ConsistencyLevel_String(t *testing.T) {
	assert.Equal(t, "strong", adapters.StrongConsistency.String())
	assert.Equal(t, "eventual", adapters.EventualConsistency.String())
	assert.Equal(t, "unknown", adapters.ConsistencyLevel(42).String())
}
