package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultAuctionCacheTTL bounds how long a snapshot may be served after the
	// last write refreshed it.
	DefaultAuctionCacheTTL = 30 * time.Second

	auctionCacheKeyPrefix = "auction"
)

// setIfNewer writes the snapshot only when no entry exists or the stored
// version is older, so concurrent writers can never roll an auction back.
//
// KEYS[1] = cache key, ARGV[1] = version, ARGV[2] = payload, ARGV[3] = ttl ms.
var setIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'payload', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// CachedAuction is an opaque, versioned snapshot of an auction read model.
// The owning service decides the payload encoding.
type CachedAuction struct {
	ID      uuid.UUID
	Version int64
	Payload []byte
}

// AuctionCache stores auction snapshots as Redis hashes.
// Key format: "auction:{auctionID}"
type AuctionCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewAuctionCache creates an AuctionCache backed by the given RedisClient.
// A non-positive ttl selects DefaultAuctionCacheTTL.
func NewAuctionCache(r *RedisClient, ttl time.Duration) *AuctionCache {
	if ttl <= 0 {
		ttl = DefaultAuctionCacheTTL
	}
	return &AuctionCache{client: r, ttl: ttl}
}

// Get retrieves a cached snapshot.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *AuctionCache) Get(ctx context.Context, id uuid.UUID) (*CachedAuction, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}

	version, err := strconv.ParseInt(vals["version"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cache parse version: %w", err)
	}
	payload, ok := vals["payload"]
	if !ok {
		return nil, errors.New("cache entry missing payload")
	}

	return &CachedAuction{ID: id, Version: version, Payload: []byte(payload)}, nil
}

// Set writes the snapshot unless a newer or equal version is already cached.
// Reports whether the entry was written.
func (c *AuctionCache) Set(ctx context.Context, entry *CachedAuction) (bool, error) {
	written, err := setIfNewer.Run(ctx, c.client.Client(),
		[]string{c.key(entry.ID)},
		entry.Version, entry.Payload, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return written == 1, nil
}

// Delete removes a cached auction.
func (c *AuctionCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Client().Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "auction:{auctionID}"
func (c *AuctionCache) key(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", auctionCacheKeyPrefix, id)
}
