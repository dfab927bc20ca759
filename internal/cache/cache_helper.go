package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// CacheConfig pairs a key namespace with its lifetime.
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

// Catalog reads dominate traffic, so course and category data get a longer
// TTL than the per-user data that changes with every approval.
var (
	CourseCacheConfig   = CacheConfig{TTL: 10 * time.Minute, Prefix: "course:"}
	CategoryCacheConfig = CacheConfig{TTL: 30 * time.Minute, Prefix: "category:"}
	UserCacheConfig     = CacheConfig{TTL: 15 * time.Minute, Prefix: "user:"}
	StatsCacheConfig    = CacheConfig{TTL: 5 * time.Minute, Prefix: "stats:"}
)

// CacheHelper is a namespaced JSON cache over one Redis client. A nil
// client degrades to a no-op: reads miss, writes and invalidations
// succeed silently, so the platform runs fine without Redis.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{client: client, prefix: prefix}
}

func (c *CacheHelper) key(k string) string {
	return c.prefix + k
}

// Get unmarshals the cached value into dest. ErrCacheNotFound means a
// clean miss; anything else is a transport or decode failure.
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set stores value as JSON under the namespaced key.
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

// Delete drops the given keys from the namespace.
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = c.key(k)
	}
	return c.client.Del(ctx, namespaced...).Err()
}

// Exists reports whether the key is currently cached.
func (c *CacheHelper) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, ErrCacheNotAvailable
	}

	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists error: %w", err)
	}
	return n > 0, nil
}

// InvalidatePattern drops every key matching the glob pattern inside the
// namespace. SCAN keeps the sweep incremental; each batch is deleted as
// it is found so a large keyspace never pins memory.
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.key(pattern), 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan pattern error: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache delete error: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// CacheOrExecute is the cache-aside read path: serve from cache when
// possible, otherwise run fetchFunc and fill the cache in the background
// so the caller never waits on the write.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetchFunc func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		slog.WarnContext(ctx, "cache read failed, falling through", "key", c.key(key), "error", err)
	}

	value, err := fetchFunc()
	if err != nil {
		return err
	}

	go func(writeCtx context.Context) {
		writeCtx, cancel := context.WithTimeout(writeCtx, 5*time.Second)
		defer cancel()
		if err := c.Set(writeCtx, key, value, ttl); err != nil {
			slog.Error("cache write failed", "key", c.key(key), "error", err)
		}
	}(context.WithoutCancel(ctx))

	// Round-trip through JSON so dest gets the same shape a cache hit
	// would produce.
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// CacheManager bundles the namespaces the repositories share.
type CacheManager struct {
	Course   *CacheHelper
	Category *CacheHelper
	User     *CacheHelper
	Stats    *CacheHelper
}

func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		Course:   NewCacheHelper(client, CourseCacheConfig.Prefix),
		Category: NewCacheHelper(client, CategoryCacheConfig.Prefix),
		User:     NewCacheHelper(client, UserCacheConfig.Prefix),
		Stats:    NewCacheHelper(client, StatsCacheConfig.Prefix),
	}
}
