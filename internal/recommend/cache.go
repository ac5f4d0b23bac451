// File path: internal/recommend/cache.go
package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nicodishanthj/shopsense/internal/common"
)

// ResultCache stores finished recommendation sets keyed by (scope, query).
// Implementations are best-effort: a miss or a cache failure just reruns the
// pipeline.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]Product, bool)
	Set(ctx context.Context, key string, products []Product)
}

// CacheKey derives the cache key for a run. The query is hashed so arbitrary
// shopper text never appears in key space.
func CacheKey(scopeKey, query string) string {
	digest := sha256.Sum256([]byte(strings.TrimSpace(strings.ToLower(query))))
	return fmt.Sprintf("rec:%s:%s", scopeKey, hex.EncodeToString(digest[:8]))
}

// RedisCache is the redis-backed ResultCache. A nil RedisCache is a valid
// no-op cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheFromEnv returns a RedisCache when SHOPSENSE_REDIS_ADDR is set and
// nil (cache disabled) otherwise.
func NewCacheFromEnv(ttl time.Duration) *RedisCache {
	addr := strings.TrimSpace(os.Getenv("SHOPSENSE_REDIS_ADDR"))
	if addr == "" {
		common.Logger().Debug("recommend: result cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("SHOPSENSE_REDIS_PASSWORD"),
	})
	common.Logger().Info("recommend: redis result cache enabled", "addr", addr, "ttl", ttl)
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]Product, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			common.Logger().Warn("recommend: cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		common.Logger().Warn("recommend: cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return products, true
}

func (c *RedisCache) Set(ctx context.Context, key string, products []Product) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		common.Logger().Warn("recommend: cache set failed", "key", key, "error", err)
	}
}
