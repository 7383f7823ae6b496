package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the shared embedding cache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache stores vectors as little-endian float32 blobs.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(opts RedisOptions) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		ttl: opts.TTL,
	}
}

// Ping verifies the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	buf, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	vector, err := decodeVector(buf)
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return vector, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, vector []float32) error {
	if err := c.client.Set(ctx, key, encodeVector(vector), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
