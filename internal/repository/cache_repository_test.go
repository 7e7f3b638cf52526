package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "shift-scheduler:", nil)
	ctx := context.Background()

	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "schedules:1", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "schedules:1", []string{"a"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "schedules:*"))
	assert.Equal(t, "shift-scheduler:schedules:1", repo.key("schedules:1"))
}
