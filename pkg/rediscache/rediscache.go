// Package rediscache caches ranked search results keyed by canonical query
// and match mode, so repeated identical queries against an unchanged index
// skip re-running exactSearch/partialSearch. Grounded on the teacher's
// internal/searcher/cache, reworked from its AND/OR/NOT query-string
// normalization (this engine has no query language, just stems) down to a
// direct canonical-key cache, keeping the singleflight in-flight
// deduplication and hit/miss counters.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/arjunmenon/lexo/internal/index"
	pkgredis "github.com/arjunmenon/lexo/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "lexo:search:"

// Cache caches []index.SearchResult by canonical query key and match mode.
type Cache struct {
	client *pkgredis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New returns a Cache backed by client with the given result TTL.
func New(client *pkgredis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "rediscache"),
	}
}

// Get returns the cached ranked results for canonicalKey under exact/partial
// mode, if present.
func (c *Cache) Get(ctx context.Context, canonicalKey string, exact bool) ([]index.SearchResult, bool) {
	key := c.buildKey(canonicalKey, exact)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var results []index.SearchResult
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return results, true
}

// Set stores results under canonicalKey/exact.
func (c *Cache) Set(ctx context.Context, canonicalKey string, exact bool, results []index.SearchResult) {
	key := c.buildKey(canonicalKey, exact)
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached results for canonicalKey/exact, or runs
// computeFn and caches its result. Concurrent callers racing on the same
// key collapse into a single computeFn invocation via singleflight.
func (c *Cache) GetOrCompute(ctx context.Context, canonicalKey string, exact bool, computeFn func() ([]index.SearchResult, error)) ([]index.SearchResult, bool, error) {
	if results, ok := c.Get(ctx, canonicalKey, exact); ok {
		return results, true, nil
	}
	key := c.buildKey(canonicalKey, exact)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if results, ok := c.Get(ctx, canonicalKey, exact); ok {
			return results, nil
		}
		results, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, canonicalKey, exact, results)
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]index.SearchResult), false, nil
}

// Invalidate removes every cached query result stored under this
// package's key prefix, so results computed against an earlier index are
// not served again.
func (c *Cache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating search cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) buildKey(canonicalKey string, exact bool) string {
	mode := "partial"
	if exact {
		mode = "exact"
	}
	hash := sha256.Sum256([]byte(mode + ":" + canonicalKey))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
