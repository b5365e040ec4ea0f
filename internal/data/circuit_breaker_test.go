package data

import (
	"context"
	"testing"
	"time"

	"CourseLane/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerStateRepo_Disabled(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	ctx := context.Background()

	for _, repo := range []*BreakerStateRepo{
		NewBreakerStateRepo(&conf.Breaker{Shared: false}, rdb, log.DefaultLogger),
		NewBreakerStateRepo(&conf.Breaker{Shared: true}, nil, log.DefaultLogger),
	} {
		assert.False(t, repo.Enabled())
		require.NoError(t, repo.MarkOpen(ctx, "enrollment-service", time.Now(), time.Minute))

		since, err := repo.OpenSince(ctx, "enrollment-service")
		require.NoError(t, err)
		assert.Nil(t, since)

		ok, err := repo.AcquireProbe(ctx, "enrollment-service", time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, repo.MarkClosed(ctx, "enrollment-service"))
	}

	assert.Empty(t, mr.Keys())
}

func TestBreakerStateRepo_SharedLifecycle(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	repo := NewBreakerStateRepo(&conf.Breaker{Shared: true}, rdb, log.DefaultLogger)
	ctx := context.Background()
	require.True(t, repo.Enabled())

	trippedAt := time.UnixMilli(1_700_000_000_123)
	require.NoError(t, repo.MarkOpen(ctx, "enrollment-service", trippedAt, 30*time.Second))
	assert.Equal(t, 30*time.Second, mr.TTL("breaker:enrollment-service:open"))

	since, err := repo.OpenSince(ctx, "enrollment-service")
	require.NoError(t, err)
	require.NotNil(t, since)
	assert.True(t, trippedAt.Equal(*since))

	first, err := repo.AcquireProbe(ctx, "enrollment-service", 5*time.Second)
	require.NoError(t, err)
	second, err := repo.AcquireProbe(ctx, "enrollment-service", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)

	require.NoError(t, repo.MarkClosed(ctx, "enrollment-service"))
	assert.False(t, mr.Exists("breaker:enrollment-service:open"))
	assert.False(t, mr.Exists("breaker:enrollment-service:probe"))
}

func TestBreakerStateRepo_TripExpires(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	repo := NewBreakerStateRepo(&conf.Breaker{Shared: true}, rdb, log.DefaultLogger)
	ctx := context.Background()

	require.NoError(t, repo.MarkOpen(ctx, "enrollment-service", time.Now(), time.Second))
	mr.FastForward(2 * time.Second)

	since, err := repo.OpenSince(ctx, "enrollment-service")
	require.NoError(t, err)
	assert.Nil(t, since)
}

func TestBreakerStateRepo_RedisDown(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	repo := NewBreakerStateRepo(&conf.Breaker{Shared: true}, rdb, log.DefaultLogger)
	mr.Close()

	_, err := repo.OpenSince(context.Background(), "enrollment-service")
	assert.Error(t, err)
	_, err = repo.AcquireProbe(context.Background(), "enrollment-service", time.Second)
	assert.Error(t, err)
}
