// Package redis implements cache.Cache on top of go-redis.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/shopfront/internal/auth/cache"
	goredis "github.com/redis/go-redis/v9"
)

// compareAndDelete removes KEYS[1] only when it still equals ARGV[1].
var compareAndDelete = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// incrWithTTL bumps KEYS[1] and sets a PX of ARGV[1] when it was just created.
var incrWithTTL = goredis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

type Cache struct {
	client *goredis.Client
}

// New connects using a redis:// or rediss:// URL.
func New(url string) (*Cache, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Cache{client: goredis.NewClient(opts)}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *goredis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	return c.client.Set(ctx, key, val, ttl).Err()
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	return val, mapMiss(err)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *Cache) DeleteIfEquals(ctx context.Context, key, val string) (bool, error) {
	n, err := compareAndDelete.Run(ctx, c.client, []string{key}, val).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *Cache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return incrWithTTL.Run(ctx, c.client, []string{key}, ttl.Milliseconds()).Int64()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error { return c.client.Close() }

func mapMiss(err error) error {
	if errors.Is(err, goredis.Nil) {
		return cache.ErrMiss
	}
	return err
}
