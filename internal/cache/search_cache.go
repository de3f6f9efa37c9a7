package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	searchKeyPrefix  = "search"
	searchVersionKey = "search:catalog-version"
)

// ISearchCache stores search responses keyed by criteria. Entries are
// scoped to a catalog version, so bumping the version orphans every
// cached page at once and TTL reclaims them.
//
// Callers resolve the key once, before reading the catalog, and use it for
// both Get and Set. A result computed from an older catalog then lands
// under the older version and is never served after a bump.
type ISearchCache interface {
	Key(ctx context.Context, criteria any) (string, error)
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	BumpVersion(ctx context.Context) error
	Flush(ctx context.Context) (int, error)
}

type redisSearchCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSearchCache returns a Redis backed cache. A nil client or a
// non-positive ttl yields a cache that never hits.
func NewSearchCache(rdb *redis.Client, ttl time.Duration) ISearchCache {
	if rdb == nil || ttl <= 0 {
		return noopSearchCache{}
	}
	return &redisSearchCache{rdb: rdb, ttl: ttl}
}

// SearchKey derives the cache key for criteria under a catalog version.
// criteria is JSON encoded, so struct field order makes it canonical.
func SearchKey(version int64, criteria any) (string, error) {
	raw, err := json.Marshal(criteria)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	sum := md5.Sum(raw)
	return fmt.Sprintf("%s:v%d:%s", searchKeyPrefix, version, hex.EncodeToString(sum[:])), nil
}

func (c *redisSearchCache) version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, searchVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Key pins criteria to the current catalog version.
func (c *redisSearchCache) Key(ctx context.Context, criteria any) (string, error) {
	v, err := c.version(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read catalog version: %w", err)
	}
	return SearchKey(v, criteria)
}

func (c *redisSearchCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if key == "" {
		return false, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read search cache: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode search cache entry: %w", err)
	}
	return true, nil
}

func (c *redisSearchCache) Set(ctx context.Context, key string, value any) error {
	if key == "" {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode search cache entry: %w", err)
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

func (c *redisSearchCache) BumpVersion(ctx context.Context) error {
	return c.rdb.Incr(ctx, searchVersionKey).Err()
}

// Flush deletes every cached search page and returns how many were removed.
func (c *redisSearchCache) Flush(ctx context.Context) (int, error) {
	var removed int
	iter := c.rdb.Scan(ctx, 0, searchKeyPrefix+":v*", 200).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 200 {
			n, err := c.rdb.Del(ctx, batch...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to flush search cache: %w", err)
			}
			removed += int(n)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to scan search cache: %w", err)
	}
	if len(batch) > 0 {
		n, err := c.rdb.Del(ctx, batch...).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to flush search cache: %w", err)
		}
		removed += int(n)
	}
	return removed, nil
}

type noopSearchCache struct{}

func (noopSearchCache) Key(context.Context, any) (string, error)       { return "", nil }
func (noopSearchCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noopSearchCache) Set(context.Context, string, any) error         { return nil }
func (noopSearchCache) BumpVersion(context.Context) error { return nil }
func (noopSearchCache) Flush(context.Context) (int, error) { return 0, nil }
