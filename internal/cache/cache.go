// Package cache provides a Redis-backed write-through cache in front of a
// things.Store for cached-StateType values: a state write goes to the
// backing store and then to Redis. CachedStore does not read state values
// back from Redis; its reads go to the backing store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nymea/nymea-sub004/internal/logger"
)

// Config mirrors the teacher's cache.Config shape.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// Cache is a thin Redis client wrapper. A disabled or unreachable Redis
// leaves client nil; every method degrades to a no-op/miss rather than
// erroring, so callers never need to branch on whether caching is live.
type Cache struct {
	client *redis.Client
}

// New connects to Redis per cfg. If cfg.Enabled is false, or the ping fails,
// New returns a disabled Cache and logs a warning rather than an error: the
// persistence store remains the source of truth, so a cold cache is
// degraded performance, not a startup failure.
func New(cfg Config) *Cache {
	if !cfg.Enabled {
		return &Cache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:        25,
		MinIdleConns:    5,
		MaxIdleConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Store().Warn().Err(err).Msg("redis unavailable, state cache disabled")
		return &Cache{}
	}
	return &Cache{client: client}
}

// IsEnabled reports whether Redis is actually connected.
func (c *Cache) IsEnabled() bool { return c.client != nil }

// Close releases the connection pool.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Get retrieves and unmarshals a cached value. ok is false on miss, error,
// or a disabled cache; callers treat a miss exactly like a disabled cache
// and fall through to the persistence store.
func (c *Cache) Get(ctx context.Context, key string, target interface{}) (ok bool) {
	if !c.IsEnabled() {
		return false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), target); err != nil {
		return false
	}
	return true
}

// Set stores a value with a TTL. Errors are swallowed: a failed cache write
// never fails the caller's persistence write, it just leaves the value
// uncached until the next successful Set of that key.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.IsEnabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Store().Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Delete removes one or more keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if !c.IsEnabled() || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Store().Warn().Err(err).Strs("keys", keys).Msg("cache delete failed")
	}
}

// DeletePattern removes every key matching a glob pattern, used to drop an
// entire thing's cached states on removal.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	if !c.IsEnabled() {
		return
	}
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Store().Warn().Err(err).Str("pattern", pattern).Msg("cache scan failed")
		return
	}
	c.Delete(ctx, keys...)
}
