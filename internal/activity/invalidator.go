package activity

import (
	"context"

	"halfnote/internal/cache"

	"go.uber.org/zap"
)

// FollowerSource is the one social-graph read the invalidator needs: the
// fan-out set for an actor's new activity.
type FollowerSource interface {
	FollowerIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

// Invalidator computes and drops every cache key an action might have
// staled. This is fan-out-on-write invalidation: it only deletes keys, it
// never pushes new content into followers' cached pages, which keeps the
// write path at O(followers) cache deletes.
//
// All failures here are logged and swallowed. A missed delete leaves stale
// cache for at most one TTL window; it must never fail or retry inside the
// mutation path.
type Invalidator struct {
	cache     cache.Store
	followers FollowerSource
	logger    *zap.Logger
}

func NewInvalidator(store cache.Store, followers FollowerSource, logger *zap.Logger) *Invalidator {
	return &Invalidator{cache: store, followers: followers, logger: logger}
}

// Invalidate drops the feed keys affected by an action of actorID, directed
// at targetUserID when non-nil:
//
//  1. all three of the actor's own feed keys (their "you" feed certainly
//     changed; friends/incoming are dropped conservatively),
//  2. the target's incoming feed, when a distinct target exists,
//  3. the friends feed of every follower of the actor.
func (inv *Invalidator) Invalidate(ctx context.Context, actorID uint64, targetUserID *uint64) {
	keys := cache.FeedKeys(actorID, cache.AllFeedKinds...)

	if targetUserID != nil && *targetUserID != actorID {
		keys = append(keys, cache.FeedKey(*targetUserID, cache.FeedKindIncoming))
	}

	followerIDs, err := inv.followers.FollowerIDs(ctx, actorID)
	if err != nil {
		// Followers we can't enumerate keep stale friends feeds until the
		// TTL expires; drop what we can and move on.
		inv.logger.Warn("invalidation fan-out: follower lookup failed",
			zap.Uint64("actor_id", actorID), zap.Error(err))
	}
	for _, fid := range followerIDs {
		keys = append(keys, cache.FeedKey(fid, cache.FeedKindFriends))
	}

	if err := inv.cache.Delete(ctx, keys...); err != nil {
		inv.logger.Warn("invalidation delete failed",
			zap.Uint64("actor_id", actorID), zap.Error(err))
	}
}

// InvalidateFollowChange covers what follow/unfollow stales beyond the feed
// fan-out (which the recorder already fires): both users' profile aggregates
// (follower/following counts) and the actor's cached following list.
func (inv *Invalidator) InvalidateFollowChange(ctx context.Context, actorID uint64, actorUsername, targetUsername string) {
	keys := []string{
		cache.ProfileKey(actorUsername),
		cache.ProfileKey(targetUsername),
		cache.FollowingKey(actorID),
	}
	if err := inv.cache.Delete(ctx, keys...); err != nil {
		inv.logger.Warn("follow-change invalidation failed",
			zap.Uint64("actor_id", actorID), zap.Error(err))
	}
}

// InvalidateReviewChange drops the keys staled by a review-level mutation
// (create/update/delete, like, comment): the review owner's cached review
// list and profile aggregates, the review detail and its album detail.
func (inv *Invalidator) InvalidateReviewChange(ctx context.Context, ownerUsername string, reviewID uint64, albumID string) {
	keys := []string{
		cache.UserReviewsKey(ownerUsername),
		cache.ProfileKey(ownerUsername),
		cache.ReviewKey(reviewID),
		cache.AlbumKey(albumID),
	}
	if err := inv.cache.Delete(ctx, keys...); err != nil {
		inv.logger.Warn("review-change invalidation failed",
			zap.Uint64("review_id", reviewID), zap.Error(err))
	}
}
