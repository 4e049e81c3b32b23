package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
)

// RedisCache stores entries in Redis under a key prefix, so several CLI runs
// or servers can share rendered artifacts.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithPrefix sets the prefix added to every key. The default is "noisegraph:".
func WithPrefix(p string) RedisOption {
	return func(c *RedisCache) { c.prefix = p }
}

// NewRedisCache connects to the Redis server at url, e.g.
// "redis://localhost:6379/0", and pings it.
func NewRedisCache(ctx context.Context, url string, opts ...RedisOption) (*RedisCache, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse redis url")
	}
	return newRedisCache(ctx, redis.NewClient(o), opts...)
}

// NewRedisCacheFromClient wraps an existing client. The cache takes
// ownership: Close closes the client.
func NewRedisCacheFromClient(ctx context.Context, client *redis.Client, opts ...RedisOption) (*RedisCache, error) {
	return newRedisCache(ctx, client, opts...)
}

func newRedisCache(ctx context.Context, client *redis.Client, opts ...RedisOption) (*RedisCache, error) {
	c := &RedisCache{client: client, prefix: "noisegraph:"}
	for _, opt := range opts {
		opt(c)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "connect to redis")
	}
	return c, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

func (c *RedisCache) Close() error { return c.client.Close() }

var _ Cache = (*RedisCache)(nil)
