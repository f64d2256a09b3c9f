package social

import (
	"context"
	"encoding/json"
	"time"

	"halfnote/internal/cache"
)

// CachedFollowing caches a user's following-id list in front of the edge
// table. The friends feed resolves this list on every cache miss, so the
// 10-minute entry saves the graph query; follow/unfollow drops the key via
// the invalidator.
type CachedFollowing struct {
	repo  FollowRepository
	cache cache.Store
	ttl   time.Duration
}

func NewCachedFollowing(repo FollowRepository, store cache.Store, ttl time.Duration) *CachedFollowing {
	return &CachedFollowing{repo: repo, cache: store, ttl: ttl}
}

func (c *CachedFollowing) FollowingIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	key := cache.FollowingKey(userID)
	if raw, hit, _ := c.cache.Get(ctx, key); hit {
		var ids []uint64
		if err := json.Unmarshal(raw, &ids); err == nil {
			return ids, nil
		}
		_ = c.cache.Delete(ctx, key)
	}

	ids, err := c.repo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(ids); err == nil {
		_ = c.cache.Set(ctx, key, raw, c.ttl)
	}
	return ids, nil
}
