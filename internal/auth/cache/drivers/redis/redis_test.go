package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/shopfront/internal/auth/cache"
	"github.com/aussiebroadwan/shopfront/internal/auth/cache/drivers/redis"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := redis.New("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.Set(ctx, "k", "v1", time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v1", got)

	require.NoError(t, c.Set(ctx, "k", "v2", time.Minute))
	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", got, "set overwrites")

	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrMiss)
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	require.NoError(t, c.Set(ctx, cache.RefreshTokenKey("u1"), "tok", 7*24*time.Hour))
	require.Equal(t, 7*24*time.Hour, mr.TTL("refresh_token:u1"))

	mr.FastForward(7 * 24 * time.Hour)
	_, err := c.Get(ctx, cache.RefreshTokenKey("u1"))
	require.ErrorIs(t, err, cache.ErrMiss)
}

func TestDeleteIfEquals(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	require.NoError(t, c.Set(ctx, "k", "current", time.Minute))

	ok, err := c.DeleteIfEquals(ctx, "k", "stale")
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, mr.Exists("k"))

	ok, err = c.DeleteIfEquals(ctx, "k", "current")
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, mr.Exists("k"))

	ok, err = c.DeleteIfEquals(ctx, "missing", "x")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIncrSetsTTLOnce(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	key := cache.OTPAttemptsKey("reset", "a@example.com")

	n, err := c.Incr(ctx, key, 10*time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.Equal(t, 10*time.Minute, mr.TTL(key))

	mr.FastForward(4 * time.Minute)
	n, err = c.Incr(ctx, key, 10*time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.Equal(t, 6*time.Minute, mr.TTL(key), "later increments keep the original expiry")

	mr.FastForward(6 * time.Minute)
	n, err = c.Incr(ctx, key, 10*time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, n, "counter restarts after expiry")
}

func TestPingFailsWhenServerGone(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, c.Ping(context.Background()))

	mr.Close()
	require.Error(t, c.Ping(context.Background()))
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := redis.New("http://not-redis")
	require.Error(t, err)
}
