package repository

import (
	"context"
	"testing"
	"time"

	"shareit/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisQuotaRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = Close(client) })
	return mr, NewRedisQuotaRepository(client)
}

func TestRedisQuotaRepository(t *testing.T) {
	mr, repo := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.Allow(ctx, "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}

	allowed, err := repo.Allow(ctx, "user:1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = repo.Allow(ctx, "user:2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "keys are independent")

	assert.Equal(t, time.Minute, mr.TTL(quotaKeyPrefix+"user:1"))

	mr.FastForward(time.Minute + time.Second)
	allowed, err = repo.Allow(ctx, "user:1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "window expired")
}

func TestRedisQuotaRepositoryUnavailable(t *testing.T) {
	mr, repo := newTestRedis(t)
	mr.Close()

	_, err := repo.Allow(context.Background(), "user:1", 3, time.Minute)
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	defer Close(client)

	assert.NoError(t, Ping(context.Background(), client))
	mr.Close()
	assert.Error(t, Ping(context.Background(), client))
	assert.NoError(t, Close(nil))
}
