package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FeedCachePrefix is the key prefix for user feed caches
	FeedCachePrefix = "feed:user:"

	// FeedCacheCap is the maximum number of assets cached per user
	FeedCacheCap = 500

	// FeedCacheTTL is the TTL for feed caches
	FeedCacheTTL = 7 * 24 * time.Hour
)

// AssetScore pairs an asset id with its creation timestamp score.
type AssetScore struct {
	AssetID   int64
	Timestamp int64 // Unix timestamp
}

// FeedCache stores per-user feeds as Redis sorted sets keyed by upload time.
// An interface so services and workers can be tested with an in-memory fake.
type FeedCache interface {
	// AddAsset adds an asset to a user's feed cache.
	AddAsset(ctx context.Context, userID, assetID int64, timestamp int64) error

	// RemoveAsset removes an asset from a user's feed cache.
	RemoveAsset(ctx context.Context, userID, assetID int64) error

	// RemoveAssets removes several assets from a user's feed cache at once.
	RemoveAssets(ctx context.Context, userID int64, assetIDs []int64) error

	// GetPage returns a page of asset ids, newest first, using offset pagination.
	GetPage(ctx context.Context, userID int64, offset, limit int) ([]int64, error)

	// WarmCache bulk-inserts assets into a user's feed cache.
	WarmCache(ctx context.Context, userID int64, assets []AssetScore) error

	// Size returns the number of assets in a user's feed cache.
	Size(ctx context.Context, userID int64) (int64, error)

	// Exists reports whether the user has a feed cache entry. False means the
	// cache was never built or its TTL expired; callers should warm it.
	Exists(ctx context.Context, userID int64) (bool, error)
}

// RedisFeedCache implements FeedCache on Redis sorted sets.
type RedisFeedCache struct {
	client *redis.Client
}

// NewFeedCache creates a FeedCache backed by Redis.
func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

func feedKey(userID int64) string {
	return fmt.Sprintf("%s%d", FeedCachePrefix, userID)
}

// AddAsset pipelines ZADD + ZREMRANGEBYRANK (trim to cap) + EXPIRE (refresh TTL).
func (c *RedisFeedCache) AddAsset(ctx context.Context, userID, assetID int64, timestamp int64) error {
	key := feedKey(userID)

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(timestamp),
		Member: strconv.FormatInt(assetID, 10),
	})
	// Keep the FeedCacheCap newest entries, drop the rest
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] AddAsset FAILED: user=%d asset=%d err=%v", userID, assetID, err)
		return fmt.Errorf("add asset to feed: %w", err)
	}
	return nil
}

func (c *RedisFeedCache) RemoveAsset(ctx context.Context, userID, assetID int64) error {
	key := feedKey(userID)
	if err := c.client.ZRem(ctx, key, strconv.FormatInt(assetID, 10)).Err(); err != nil {
		log.Printf("[FeedCache] RemoveAsset FAILED: user=%d asset=%d err=%v", userID, assetID, err)
		return fmt.Errorf("remove asset from feed: %w", err)
	}
	return nil
}

func (c *RedisFeedCache) RemoveAssets(ctx context.Context, userID int64, assetIDs []int64) error {
	if len(assetIDs) == 0 {
		return nil
	}

	key := feedKey(userID)
	members := make([]interface{}, len(assetIDs))
	for i, id := range assetIDs {
		members[i] = strconv.FormatInt(id, 10)
	}

	if err := c.client.ZRem(ctx, key, members...).Err(); err != nil {
		log.Printf("[FeedCache] RemoveAssets FAILED: user=%d count=%d err=%v", userID, len(assetIDs), err)
		return fmt.Errorf("remove assets from feed: %w", err)
	}
	return nil
}

// GetPage reads a page with ZREVRANGE (newest first) and refreshes the TTL.
func (c *RedisFeedCache) GetPage(ctx context.Context, userID int64, offset, limit int) ([]int64, error) {
	key := feedKey(userID)

	start := int64(offset)
	stop := int64(offset + limit - 1)

	members, err := c.client.ZRevRange(ctx, key, start, stop).Result()
	if err != nil {
		log.Printf("[FeedCache] GetPage FAILED: user=%d err=%v", userID, err)
		return nil, fmt.Errorf("get feed page: %w", err)
	}

	// Refresh TTL on access
	c.client.Expire(ctx, key, FeedCacheTTL)

	assetIDs := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			log.Printf("[FeedCache] GetPage parse error: member=%q err=%v", m, err)
			return nil, fmt.Errorf("parse asset id: %w", err)
		}
		assetIDs = append(assetIDs, id)
	}

	return assetIDs, nil
}

// WarmCache bulk-inserts with pipelined ZADDs and sets the TTL.
func (c *RedisFeedCache) WarmCache(ctx context.Context, userID int64, assets []AssetScore) error {
	if len(assets) == 0 {
		return nil
	}

	key := feedKey(userID)

	pipe := c.client.Pipeline()
	for _, a := range assets {
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(a.Timestamp),
			Member: strconv.FormatInt(a.AssetID, 10),
		})
	}
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] WarmCache FAILED: user=%d count=%d err=%v", userID, len(assets), err)
		return fmt.Errorf("warm feed cache: %w", err)
	}

	log.Printf("[FeedCache] WarmCache OK: user=%d count=%d", userID, len(assets))
	return nil
}

func (c *RedisFeedCache) Size(ctx context.Context, userID int64) (int64, error) {
	n, err := c.client.ZCard(ctx, feedKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("feed cache size: %w", err)
	}
	return n, nil
}

func (c *RedisFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	n, err := c.client.Exists(ctx, feedKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("feed cache exists: %w", err)
	}
	return n > 0, nil
}
