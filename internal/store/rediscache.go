package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const latestCacheTTL = 10 * time.Minute

// RedisLatestCache is a read-through cache over Latest lookups, keyed by
// (subject, predicate). Cache failures are logged and treated as misses; the
// log stays the source of truth.
type RedisLatestCache struct {
	client *redis.Client
	logger *zap.Logger
}

// ConnectRedis creates a Redis client from a URL.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func NewRedisLatestCache(client *redis.Client, logger *zap.Logger) *RedisLatestCache {
	return &RedisLatestCache{client: client, logger: logger}
}

func latestCacheKey(subject, predicate string) string {
	return "latest:" + subject + "|" + predicate
}

func (c *RedisLatestCache) Get(ctx context.Context, subject, predicate string) (*domain.Triple, bool) {
	raw, err := c.client.Get(ctx, latestCacheKey(subject, predicate)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("latest cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var t domain.Triple
	if err := json.Unmarshal(raw, &t); err != nil {
		c.logger.Warn("latest cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &t, true
}

func (c *RedisLatestCache) Set(ctx context.Context, t *domain.Triple) {
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, latestCacheKey(t.Subject, t.Predicate), raw, latestCacheTTL).Err(); err != nil {
		c.logger.Warn("latest cache set failed", zap.Error(err))
	}
}

func (c *RedisLatestCache) Invalidate(ctx context.Context, subject, predicate string) {
	if err := c.client.Del(ctx, latestCacheKey(subject, predicate)).Err(); err != nil {
		c.logger.Warn("latest cache invalidate failed", zap.Error(err))
	}
}
