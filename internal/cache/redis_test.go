package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"shopgifter/pkg/uid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only when a Redis server is available, e.g. REDIS_TEST_ADDR=localhost:6379.
func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	c, err := NewRedisCache(RedisConfig{Addr: addr, KeyPrefix: "shopgifter-test:" + uid.New() + ":"}, nil)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	v, err := c.GetOrSet(ctx, "shop", time.Minute, func() ([]byte, error) { return []byte("entries"), nil })
	require.NoError(t, err)
	assert.Equal(t, "entries", string(v))

	got, err := c.Get(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, "entries", string(got))

	require.NoError(t, c.Delete(ctx, "shop"))
	_, err = c.Get(ctx, "shop")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	_, err := NewRedisCache(RedisConfig{Addr: "127.0.0.1:1"}, nil)

	assert.ErrorContains(t, err, "failed to connect to Redis")
}

func TestRedisCacheKeyPrefix(t *testing.T) {
	c := NewRedisCacheFromClient(nil, "shopgifter:")

	assert.Equal(t, "shopgifter:recipient:someplayer", c.key("recipient:someplayer"))
}
