// Package cache provides an optional Redis-backed cache of search result
// pages. Concurrent identical uncached queries are collapsed through
// singleflight so the engine computes each page once per TTL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/auroralabs/aurora-search/internal/search/engine"
	"github.com/auroralabs/aurora-search/pkg/config"
	pkgredis "github.com/auroralabs/aurora-search/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

// QueryCache caches fully paginated engine results keyed by normalized
// query, type filter, and pagination window.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a QueryCache over an existing Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached result for the request, if present.
func (c *QueryCache) Get(ctx context.Context, query string, filter engine.Filter, skip, limit int) (*engine.Result, bool) {
	key := c.buildKey(query, filter, skip, limit)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result engine.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &result, true
}

// Set stores a result under the request's cache key with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, query string, filter engine.Filter, skip, limit int, result *engine.Result) {
	key := c.buildKey(query, filter, skip, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes and caches it, making
// sure only one concurrent caller computes each key.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	filter engine.Filter,
	skip, limit int,
	computeFn func() (*engine.Result, error),
) (*engine.Result, bool, error) {
	if result, ok := c.Get(ctx, query, filter, skip, limit); ok {
		return result, true, nil
	}
	key := c.buildKey(query, filter, skip, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, query, filter, skip, limit); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, filter, skip, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*engine.Result), false, nil
}

// Invalidate drops every cached search result. Called after a reload so
// stale pages never outlive the index they were computed from.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns cumulative hit and miss counts.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(query string, filter engine.Filter, skip, limit int) string {
	raw := fmt.Sprintf("%s|%s|skip=%d|limit=%d", NormalizeQuery(query), filter, skip, limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// NormalizeQuery lower-cases the query and sorts its words so "pizza movies"
// and "Movies  PIZZA" share a cache entry. Word order never affects ranking,
// so this is safe.
func NormalizeQuery(query string) string {
	words := strings.Fields(strings.ToLower(query))
	sort.Strings(words)
	return strings.Join(words, " ")
}
