package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"

	"recipe-extraction-api/internal/extractor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisCache stores outcomes as JSON so several API instances can share them.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache.
func NewRedisCache(addr, password string, db int) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: rdb}
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Get(ctx context.Context, url string) (*extractor.Outcome, bool) {
	val, err := c.client.Get(ctx, Key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	} else if err != nil {
		slog.Warn("Redis cache read failed", "url", url, "error", err)
		return nil, false
	}

	var outcome extractor.Outcome
	if err := json.Unmarshal(val, &outcome); err != nil {
		slog.Warn("Discarding unreadable cache entry", "url", url, "error", err)
		return nil, false
	}
	return &outcome, true
}

func (c *RedisCache) Set(ctx context.Context, url string, outcome *extractor.Outcome, ttl time.Duration) {
	if !cacheable(outcome) {
		return
	}
	b, err := json.Marshal(outcome)
	if err != nil {
		slog.Warn("Could not encode outcome for cache", "url", url, "error", err)
		return
	}
	if err := c.client.Set(ctx, Key(url), b, ttl).Err(); err != nil {
		slog.Warn("Redis cache write failed", "url", url, "error", err)
	}
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
