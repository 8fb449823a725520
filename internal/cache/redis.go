// Package cache provides a Redis-backed listing cache for catalog queries.
//
// Entries are keyed by a catalog version number. Invalidate bumps the version
// so every earlier entry becomes unreachable and expires through its TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/redis/go-redis/v9"
)

const (
	listKeyPrefix = "catalog:products:v"
	versionKey    = "catalog:products:version"
)

// DefaultTTL is used when a non-positive TTL is configured.
const DefaultTTL = 5 * time.Minute

// RedisCache implements core.ListingCache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a cache storing pages for ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisClient connects to the Redis server at url (redis://...) and
// verifies it answers PING.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Get returns the cached page for f and p along with the catalog version it
// looked under. Any failure is a miss; if the version itself cannot be read
// the returned version is -1.
func (c *RedisCache) Get(ctx context.Context, f core.ProductFilter, p core.PageRequest) (core.ProductPage, int64, bool) {
	version, err := c.version(ctx)
	if err != nil {
		slog.Warn("listing cache: read version failed", "error", err)
		return core.ProductPage{}, -1, false
	}

	data, err := c.client.Get(ctx, listKey(version, f, p)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("listing cache: get failed", "error", err)
		}
		return core.ProductPage{}, version, false
	}

	var page core.ProductPage
	if err := json.Unmarshal(data, &page); err != nil {
		slog.Warn("listing cache: decode failed", "error", err)
		return core.ProductPage{}, version, false
	}
	return page, version, true
}

// Set stores page under version, the value Get returned before the store was
// read. A page stored under a version that has since been invalidated is
// never returned. Failures are logged only.
func (c *RedisCache) Set(ctx context.Context, version int64, f core.ProductFilter, p core.PageRequest, page core.ProductPage) {
	if version < 0 {
		return
	}

	data, err := json.Marshal(page)
	if err != nil {
		slog.Warn("listing cache: encode failed", "error", err)
		return
	}

	if err := c.client.Set(ctx, listKey(version, f, p), data, c.ttl).Err(); err != nil {
		slog.Warn("listing cache: set failed", "error", err)
	}
}

// Invalidate makes every cached page unreachable.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	version, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return fmt.Errorf("invalidate listing cache: %w", err)
	}
	slog.Debug("listing cache invalidated", "version", version)
	return nil
}

// version returns the current catalog version; a missing key is version 0.
func (c *RedisCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// listKey encodes every query parameter so distinct queries never share
// an entry.
func listKey(version int64, f core.ProductFilter, p core.PageRequest) string {
	return listKeyPrefix + strconv.FormatInt(version, 10) +
		":b=" + strconv.Quote(f.Brand) +
		":c=" + strconv.Quote(f.Color) +
		":min=" + formatBound(f.MinPrice) +
		":max=" + formatBound(f.MaxPrice) +
		":p=" + strconv.Itoa(p.Page) +
		":l=" + strconv.Itoa(p.Limit)
}

func formatBound(b *float64) string {
	if b == nil {
		return "-"
	}
	return strconv.FormatFloat(*b, 'g', -1, 64)
}
