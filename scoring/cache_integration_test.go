//go:build integration
// +build integration

package scoring_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"mazzeh-api/config"
	"mazzeh-api/scoring"
)

func setupRedis(t *testing.T) *redis.Client {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start redis container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb, err := config.InitRedis(ctx, "redis://"+endpoint+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisCacheRoundTrip(t *testing.T) {
	rdb := setupRedis(t)
	cache := scoring.NewRedisCache(rdb, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "score:restaurant:1")
	require.NoError(t, err)
	assert.False(t, ok, "missing key is a miss, not an error")

	require.NoError(t, cache.Set(ctx, "score:restaurant:1", 11.0/3.0))
	require.NoError(t, cache.Set(ctx, "score:item:7", 0))

	raw, err := rdb.Get(ctx, "score:restaurant:1").Result()
	require.NoError(t, err)
	assert.Equal(t, "3.67", raw)

	score, ok, err := cache.Get(ctx, "score:restaurant:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3.67, score)

	score, ok, err = cache.Get(ctx, "score:item:7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.0, score)

	ttl, err := rdb.TTL(ctx, "score:restaurant:1").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute, "ttl %s", ttl)

	require.NoError(t, cache.Delete(ctx))
	require.NoError(t, cache.Delete(ctx, "score:restaurant:1", "score:item:7", "score:item:8"))
	for _, key := range []string{"score:restaurant:1", "score:item:7"} {
		_, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	require.NoError(t, rdb.Set(ctx, "score:item:9", "not a number", 0).Err())
	_, _, err = cache.Get(ctx, "score:item:9")
	assert.Error(t, err)
}
