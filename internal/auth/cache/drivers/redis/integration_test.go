//go:build integration

package redis_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aussiebroadwan/shopfront/internal/auth/cache"
	"github.com/aussiebroadwan/shopfront/internal/auth/cache/drivers/redis"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var redisURL string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		panic(err)
	}
	redisURL = fmt.Sprintf("redis://%s:%s/0", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRealRedisCompareAndDelete(t *testing.T) {
	ctx := context.Background()
	c, err := redis.New(redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Ping(ctx))

	key := cache.RefreshTokenKey("integration")
	require.NoError(t, c.Set(ctx, key, "tok", time.Minute))

	ok, err := c.DeleteIfEquals(ctx, key, "other")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = c.DeleteIfEquals(ctx, key, "tok")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = c.Get(ctx, key)
	require.ErrorIs(t, err, cache.ErrMiss)

	attempts := cache.OTPAttemptsKey("verify", "integration@example.com")
	for want := int64(1); want <= 3; want++ {
		n, err := c.Incr(ctx, attempts, time.Minute)
		require.NoError(t, err)
		require.Equal(t, want, n)
	}
	require.NoError(t, c.Delete(ctx, attempts))
}
