package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"task-tracker/internal/config"
	"task-tracker/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	keyList   = "tasks:list"
	keySearch = "tasks:search:"
)

var (
	client *redis.Client
	once   sync.Once
)

// Client returns the global Redis client (initialized on first use).
// Returns nil when REDIS_URL is unset or Redis is unreachable.
func Client(ctx context.Context) *redis.Client {
	once.Do(func() {
		cfg := config.Get()
		if cfg.RedisURL == "" {
			return
		}
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error(ctx, "Invalid REDIS_URL", "error", err)
			return
		}
		opts.PoolSize = cfg.RedisPoolSize
		c := redis.NewClient(opts)
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Error(ctx, "Redis ping failed", "error", err)
			_ = c.Close()
			return
		}
		client = c
		logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	})
	return client
}

// TaskCache caches serialized GET /tasks responses, one key per search term.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a TaskCache on rdb.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached list for search. Returns (nil, false) on miss or error.
func (c *TaskCache) Get(ctx context.Context, search string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, Key(search)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get tasks failed", "error", err)
		return nil, false
	}
	return b, true
}

// Set stores the list for search with the configured TTL.
func (c *TaskCache) Set(ctx context.Context, search string, b []byte) {
	if err := c.rdb.Set(ctx, Key(search), b, c.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set tasks failed", "error", err)
	}
}

// Invalidate drops the full list and every search result.
func (c *TaskCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, keyList).Err(); err != nil {
		logger.Debug(ctx, "Redis invalidate tasks failed", "error", err)
	}
	iter := c.rdb.Scan(ctx, 0, keySearch+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Debug(ctx, "Redis invalidate search failed", "error", err, "key", iter.Val())
		}
	}
	if err := iter.Err(); err != nil {
		logger.Debug(ctx, "Redis scan search keys failed", "error", err)
	}
}

// Ping checks the Redis connection.
func (c *TaskCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Key returns the cache key for a search term. Matching is case-insensitive,
// so terms are lowercased; whitespace is significant and kept.
func Key(search string) string {
	if search == "" {
		return keyList
	}
	return keySearch + strings.ToLower(search)
}
