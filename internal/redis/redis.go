// Package redis backs the shared caches with a redis server.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/content"
	"github.com/Nixie-Tech-LLC/masjid/internal/prayer"
)

// Cache wraps a redis client. It satisfies prayer.ScheduleCache and
// content.SiteCache.
type Cache struct {
	rdb    *redis.Client
	prefix string
}

var (
	_ prayer.ScheduleCache = (*Cache)(nil)
	_ content.SiteCache    = (*Cache)(nil)
)

func NewClient(address, username, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})
}

// New namespaces every key under prefix ("masjid" when empty).
func New(rdb *redis.Client, prefix string) *Cache {
	if prefix == "" {
		prefix = "masjid"
	}
	return &Cache{rdb: rdb, prefix: prefix}
}

func (c *Cache) key(k string) string { return c.prefix + ":" + k }

func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error { return c.rdb.Close() }

// Set stores value under key. Failures are logged, never returned: the
// cache is an optimisation.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if err := c.rdb.Set(ctx, c.key(key), value, expiration).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[redis] failed to set key")
	}
}

func (c *Cache) GetSchedule(ctx context.Context, key string) (prayer.Schedule, bool) {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("[redis] failed to read schedule")
		}
		return nil, false
	}
	var s prayer.Schedule
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[redis] dropping corrupt schedule")
		return nil, false
	}
	return s, true
}

func (c *Cache) SetSchedule(ctx context.Context, key string, s prayer.Schedule, ttl time.Duration) {
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	c.Set(ctx, key, raw, ttl)
}

// Load returns the cached site document, or nil when none is stored.
func (c *Cache) Load(ctx context.Context) ([]byte, error) {
	raw, err := c.rdb.Get(ctx, c.key(content.SiteCacheKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", content.SiteCacheKey, err)
	}
	return raw, nil
}

func (c *Cache) Save(ctx context.Context, raw []byte) error {
	if err := c.rdb.Set(ctx, c.key(content.SiteCacheKey), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", content.SiteCacheKey, err)
	}
	return nil
}
