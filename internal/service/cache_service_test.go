package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("connection refused")
}

func TestCacheServiceRoundTrip(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemoryCacheRepo(), metrics, time.Minute, nil, true)
	ctx := context.Background()

	var dest []string
	hit, err := svc.Get(ctx, "schedule:1:assignments", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "schedule:1:assignments", []string{"a", "b"}, 0))
	hit, err = svc.Get(ctx, "schedule:1:assignments", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a", "b"}, dest)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)

	require.NoError(t, svc.Invalidate(ctx, "schedule:1:*"))
	hit, _ = svc.Get(ctx, "schedule:1:assignments", &dest)
	assert.False(t, hit)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, false)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(ctx, "k", "v", time.Minute))
	assert.Empty(t, repo.items)

	var nilSvc *CacheService
	hit, err := nilSvc.Get(ctx, "k", new(string))
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, nilSvc.Invalidate(ctx, "*"))
}

func TestCacheServiceBackendFailure(t *testing.T) {
	svc := NewCacheService(failingCacheRepo{}, nil, time.Minute, nil, true)
	ctx := context.Background()

	hit, err := svc.Get(ctx, "k", new(string))
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Error(t, svc.Set(ctx, "k", "v", 0))
	assert.Error(t, svc.Invalidate(ctx, "k*"))
}
