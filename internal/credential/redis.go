// Package credential models bearer credential pools and the providers that
// load them.
//
// This file implements the Redis-backed provider. Each pool is one Redis
// list read in full with LRANGE, so pools can be rotated by an external
// process with an atomic RENAME or MULTI/EXEC without restarting the daemon.
//
// KEY LAYOUT:
//   - <prefix>:<pool>:dispatch holds the dispatch pool
//   - <prefix>:<pool>:measure holds the measurement pool
//
// The default prefix is "fanout:pool". Members are either JSON credential
// objects in the pool file format or bare token strings, and the two may be
// mixed in one list.
package credential

import (
	"context"
	"fmt"
	"strings"

	"github.com/concave-dev/fanout/internal/logging"
	"github.com/redis/go-redis/v9"
)

// listReader is the subset of *redis.Client used by RedisProvider. Tests
// substitute a fake.
type listReader interface {
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// RedisProvider loads pools from Redis lists. Each list member is a JSON
// credential object or a bare token string.
type RedisProvider struct {
	rdb    listReader
	router *Router
	prefix string
}

// RedisOption configures a RedisProvider.
type RedisOption func(*RedisProvider)

// WithKeyPrefix sets the key namespace; keys are "<prefix>:<pool>:<purpose>".
func WithKeyPrefix(prefix string) RedisOption {
	return func(p *RedisProvider) { p.prefix = strings.Trim(prefix, ":") }
}

// NewRedisProvider creates a provider over a Redis client. The client is
// owned by the caller, which also closes it on shutdown.
func NewRedisProvider(rdb listReader, router *Router, opts ...RedisOption) *RedisProvider {
	p := &RedisProvider{
		rdb:    rdb,
		router: router,
		prefix: "fanout:pool",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the list key holding a group's pool for purpose.
func (p *RedisProvider) Key(group string, purpose Purpose) string {
	return fmt.Sprintf("%s:%s:%s", p.prefix, p.router.Pool(group), purpose)
}

// LoadPool reads the whole list. Redis errors and undecodable members yield
// an empty pool, mirroring the file provider's all-or-nothing validation.
func (p *RedisProvider) LoadPool(ctx context.Context, group string, purpose Purpose) []Credential {
	key := p.Key(group, purpose)

	members, err := p.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		logging.Warn("Failed to read pool %s from redis: %v", key, err)
		return nil
	}
	if len(members) == 0 {
		logging.Warn("Redis pool %s is empty for group %s", key, NormalizeGroup(group))
		return nil
	}

	pool := make([]Credential, 0, len(members))
	for i, member := range members {
		cred, err := decodeMember(member)
		if err != nil {
			logging.Warn("Redis pool %s member %d is not in the expected format: %v", key, i, err)
			return nil
		}
		pool = append(pool, cred)
	}
	return pool
}
