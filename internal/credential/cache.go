// Package credential models bearer credential pools and the providers that
// load them.
//
// This file implements the pool cache that sits in front of the file and
// Redis providers. Every dispatch request loads two pools, and diagnostics
// load two per group, so without a cache a busy daemon re-reads the same
// files or Redis lists many times per second.
//
// CACHE BEHAVIOR:
//   - Keyed by normalized group and purpose, so groups sharing a pool are
//     still cached separately
//   - Entries expire after the configured TTL; a zero TTL disables the cache
//   - Empty pools are never cached, so a newly provisioned pool is visible on
//     the next request
//   - Purge drops everything; the API exposes it as POST /api/v1/pools/reload
package credential

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// cacheSize bounds cached pools; two purposes per group leaves ample room.
const cacheSize = 256

// CachedProvider memoizes another provider's pools for a TTL so a burst of
// requests does not re-read files or Redis each time. Empty pools are never
// cached, so a pool that appears is picked up on the next request.
type CachedProvider struct {
	next  Provider
	cache *expirable.LRU[string, []Credential]
}

// NewCachedProvider wraps next with a cache of the given TTL. A non-positive
// TTL disables caching and returns next unchanged.
func NewCachedProvider(next Provider, ttl time.Duration) Provider {
	if ttl <= 0 {
		return next
	}
	return &CachedProvider{
		next:  next,
		cache: expirable.NewLRU[string, []Credential](cacheSize, nil, ttl),
	}
}

// LoadPool returns the cached pool or loads and caches it. The returned slice
// is shared with the cache and must not be modified.
func (c *CachedProvider) LoadPool(ctx context.Context, group string, purpose Purpose) []Credential {
	key := NormalizeGroup(group) + "/" + purpose.String()
	if pool, ok := c.cache.Get(key); ok {
		return pool
	}

	pool := c.next.LoadPool(ctx, group, purpose)
	if len(pool) > 0 {
		c.cache.Add(key, pool)
	}
	return pool
}

// Purge drops every cached pool so the next request reads the backend.
func (c *CachedProvider) Purge() {
	c.cache.Purge()
}
