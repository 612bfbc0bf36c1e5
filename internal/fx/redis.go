package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKey = "payvost:fx:latest"

// RedisCache shares the rate table between API replicas.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects using a redis:// URL.
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context) (Table, bool, error) {
	raw, err := c.client.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Table{}, false, nil
	}
	if err != nil {
		return Table{}, false, fmt.Errorf("redis get: %w", err)
	}
	var t Table
	if err := json.Unmarshal(raw, &t); err != nil {
		return Table{}, false, fmt.Errorf("decode cached rates: %w", err)
	}
	return t, true, nil
}

func (c *RedisCache) Set(ctx context.Context, t Table, ttl time.Duration) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode rates: %w", err)
	}
	return c.client.Set(ctx, redisKey, raw, ttl).Err()
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
