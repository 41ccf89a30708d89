// ABOUTME: Optional Redis read-through cache for completion lookups
// ABOUTME: Caches found completions only; misses and errors fall through to the store

// Package cache provides an optional Redis-backed read cache for completion
// lookups. Completions are immutable once written, so cached entries are never
// invalidated, only expired. Absence is never cached: a learner may complete a
// milestone at any moment, and a stale negative entry would hide it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grovehq/grove-ledger/internal/store"
)

// DefaultTTL applies when no TTL is configured.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "completion:"

// CompletionCache fronts completion reads with Redis. Every method degrades
// to a no-op on Redis failure; the store remains the source of truth.
type CompletionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New connects to Redis and verifies the connection with a ping.
func New(addr, password string, db int, ttl time.Duration) (*CompletionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &CompletionCache{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "cache"),
	}, nil
}

// completionKey builds the cache key for a (milestone, learner) pair.
func completionKey(milestoneID uint64, learnerID string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, milestoneID, learnerID)
}

// Get returns the cached completion for the pair. A miss, a connection
// failure, or a corrupt entry all report found=false so the caller falls
// through to the store.
func (c *CompletionCache) Get(ctx context.Context, milestoneID uint64, learnerID string) (*store.Completion, bool) {
	key := completionKey(milestoneID, learnerID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var completion store.Completion
	if err := json.Unmarshal(data, &completion); err != nil {
		c.logger.Warn("discarding corrupt cache entry", "key", key, "error", err)
		return nil, false
	}

	return &completion, true
}

// Put stores a completion that was found in the store. Failures are logged
// and otherwise ignored.
func (c *CompletionCache) Put(ctx context.Context, completion *store.Completion) {
	key := completionKey(completion.MilestoneID, completion.LearnerID)

	data, err := json.Marshal(completion)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Close releases the Redis connection pool.
func (c *CompletionCache) Close() error {
	return c.client.Close()
}
