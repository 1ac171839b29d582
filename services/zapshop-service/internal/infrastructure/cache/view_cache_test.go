package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/quangdang46/zapshop/shared/redis"
)

func TestRedisViewCache_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	r, err := redis.NewRedis(redis.RedisConfig{RedisHost: host, RedisPort: portNum})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	require.NoError(t, r.HealthCheck(ctx))

	c := NewRedisViewCache(r, 200*time.Millisecond)
	key := redis.ViewKey("0xABC", "get_config_copy")

	_, found, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, key, []byte(`{"bronze_user_cap_per_day":"5"}`)))

	got, found, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"bronze_user_cap_per_day":"5"}`, string(got))

	require.NoError(t, c.Delete(ctx, key))
	_, found, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, c.Delete(ctx))

	require.NoError(t, c.Set(ctx, key, []byte(`{}`)))

	assert.Eventually(t, func() bool {
		_, found, err := c.Get(ctx, key)
		return err == nil && !found
	}, 3*time.Second, 100*time.Millisecond)
}
