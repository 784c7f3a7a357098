package wiki

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/wikimirror/wikimirror/internal/metrics"
)

// Cache stores opaque API response bodies keyed by a request fingerprint.
// It has no awareness of request semantics; values never expire at this
// layer. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// Fingerprint derives the cache key for an encoded API request. The query
// encoding is canonical (parameters sorted by name), so equal requests
// always produce equal keys.
func Fingerprint(encodedQuery string) string {
	sum := sha256.Sum256([]byte(encodedQuery))
	return "mwapi:" + hex.EncodeToString(sum[:])
}

// RedisCache is a Cache backed by a Redis server. Errors degrade to cache
// misses; the pipeline never fails because of the cache.
type RedisCache struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewRedisCache connects to the Redis server at addr ("host:port").
func NewRedisCache(addr string, log *slog.Logger) *RedisCache {
	return &RedisCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		log: log,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache get failed", "key", key, "error", err)
		}
		metrics.RecordCache(false)
		return "", false
	}
	metrics.RecordCache(true)
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string) {
	if err := c.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
	}
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
