package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ScoreEntry is the cached value for one unordered user pair.
type ScoreEntry struct {
	Score      float64   `json:"score"`
	ComputedAt time.Time `json:"computed_at"`
}

// ComputeFunc produces a fresh compatibility score for a pair on cache
// miss. userA < userB is guaranteed by the cache (canonical ordering).
type ComputeFunc func(ctx context.Context, userA, userB uint64) (float64, error)

// CompatibilityCache stores pairwise compatibility scores in Redis under a
// canonical (min,max) key with a validity TTL (default 24h). Concurrent
// misses for the same pair collapse into a single computation via
// singleflight, so a fan-out of selection generations never recomputes a
// shared pair twice.
type CompatibilityCache struct {
	redis   *RedisCache
	ttl     time.Duration
	compute ComputeFunc
	group   singleflight.Group
	now     func() time.Time
}

func NewCompatibilityCache(rdb *RedisCache, ttl time.Duration, compute ComputeFunc) *CompatibilityCache {
	return &CompatibilityCache{
		redis:   rdb,
		ttl:     ttl,
		compute: compute,
		now:     time.Now,
	}
}

// PairKey returns the canonical Redis key for an unordered user pair.
func PairKey(user1, user2 uint64) string {
	if user1 > user2 {
		user1, user2 = user2, user1
	}
	return fmt.Sprintf("compat:%d:%d", user1, user2)
}

// GetOrCompute returns the cached score for the pair, computing and storing
// it under a fresh TTL when absent or expired. Expired entries are handled
// lazily by Redis key expiry; no background sweep.
func (c *CompatibilityCache) GetOrCompute(ctx context.Context, user1, user2 uint64) (ScoreEntry, error) {
	key := PairKey(user1, user2)

	if entry, ok, err := c.lookup(ctx, key); err != nil {
		return ScoreEntry{}, err
	} else if ok {
		return entry, nil
	}

	// Single-flight: concurrent callers for the same pair share one
	// computation and receive the same entry.
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have finished the flight between our lookup
		// and joining the group.
		if entry, ok, err := c.lookup(ctx, key); err != nil {
			return nil, err
		} else if ok {
			return entry, nil
		}

		a, b := user1, user2
		if a > b {
			a, b = b, a
		}
		score, err := c.compute(ctx, a, b)
		if err != nil {
			return nil, err
		}

		entry := ScoreEntry{Score: score, ComputedAt: c.now().UTC()}
		payload, err := json.Marshal(entry)
		if err != nil {
			return nil, err
		}
		if err := c.redis.Set(ctx, key, payload, c.ttl); err != nil {
			return nil, err
		}
		return entry, nil
	})
	if err != nil {
		return ScoreEntry{}, err
	}
	return v.(ScoreEntry), nil
}

func (c *CompatibilityCache) lookup(ctx context.Context, key string) (ScoreEntry, bool, error) {
	raw, err := c.redis.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return ScoreEntry{}, false, nil
	}
	if err != nil {
		return ScoreEntry{}, false, err
	}

	var entry ScoreEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// Treat a corrupt entry as a miss; it will be overwritten.
		return ScoreEntry{}, false, nil
	}
	return entry, true, nil
}
