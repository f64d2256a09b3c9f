package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"halfnote/internal/activity"
	"halfnote/internal/cache"
	"halfnote/internal/dbmysql"

	"go.uber.org/zap"
)

const (
	// MaxLimit caps a feed page to bound response size.
	MaxLimit     = 50
	DefaultLimit = 20
)

// pinExcluded lists the types hidden from the you/incoming feeds: pinning
// is profile curation, not a feed-worthy event.
var pinExcluded = []dbmysql.ActivityType{dbmysql.ActivityReviewPinned}

// FollowingSource is the social-graph read the friends feed needs.
type FollowingSource interface {
	FollowingIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

// Service assembles the three personalized feed views from the activity log
// and the social graph, with a short-TTL page cache in front of the log
// query. Only the raw activity rows are cached; display data and live
// like/comment counts are resolved fresh on every call.
type Service struct {
	activities activity.ActivityRepository
	following  FollowingSource
	lookups    LookupRepository
	cache      cache.Store
	ttl        time.Duration
	logger     *zap.Logger
}

func NewService(
	activities activity.ActivityRepository,
	following FollowingSource,
	lookups LookupRepository,
	store cache.Store,
	ttl time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		activities: activities,
		following:  following,
		lookups:    lookups,
		cache:      store,
		ttl:        ttl,
		logger:     logger,
	}
}

// cachedPage is the cache value for one feed page: the raw activity rows
// plus the has-more flag. Counts are deliberately absent. Limit records the
// page size the entry was built for, so a hit with a different limit is a
// miss rather than a wrong-sized page.
type cachedPage struct {
	Activities []dbmysql.Activity `json:"activities"`
	HasMore    bool               `json:"has_more"`
	Limit      int                `json:"limit"`
}

// GetFeed returns one page of the requester's feed of the given kind.
// Malformed pagination is clamped, an unknown kind yields an empty page;
// neither is an error. Offsets are plain skip-counts, so result drift
// between pages under concurrent writes is accepted.
func (s *Service) GetFeed(ctx context.Context, requesterID uint64, kind string, offset, limit int) (*Page, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	switch kind {
	case cache.FeedKindFriends, cache.FeedKindYou, cache.FeedKindIncoming:
	default:
		return &Page{Items: []Item{}}, nil
	}

	// Only the first page lives under the invalidator's feed:{user}:{kind}
	// key; deeper offsets always read through to the log.
	key := cache.FeedKey(requesterID, kind)
	var page *cachedPage
	if offset == 0 {
		if cached, ok := s.getCached(ctx, key); ok && cached.Limit == limit {
			page = cached
		}
	}
	if page == nil {
		var err error
		page, err = s.queryPage(ctx, requesterID, kind, offset, limit)
		if err != nil {
			return nil, err
		}
		if offset == 0 {
			s.setCached(ctx, key, page)
		}
	}

	items, err := s.hydrate(ctx, requesterID, page.Activities)
	if err != nil {
		return nil, err
	}

	result := &Page{Items: items, HasMore: page.HasMore}
	if page.HasMore {
		next := offset + len(items)
		result.NextOffset = &next
	}
	return result, nil
}

func (s *Service) getCached(ctx context.Context, key string) (*cachedPage, bool) {
	raw, hit, _ := s.cache.Get(ctx, key)
	if !hit {
		return nil, false
	}

	var page cachedPage
	if err := json.Unmarshal(raw, &page); err != nil {
		// A corrupt entry is dropped and treated as a miss.
		s.logger.Warn("discarding undecodable cached feed page",
			zap.String("key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	return &page, true
}

func (s *Service) setCached(ctx context.Context, key string, page *cachedPage) {
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, raw, s.ttl)
}

// queryPage reads limit+1 rows from the activity log so HasMore is exact.
func (s *Service) queryPage(ctx context.Context, requesterID uint64, kind string, offset, limit int) (*cachedPage, error) {
	var (
		acts []dbmysql.Activity
		err  error
	)

	switch kind {
	case cache.FeedKindFriends:
		var followeeIDs []uint64
		followeeIDs, err = s.following.FollowingIDs(ctx, requesterID)
		if err != nil {
			return nil, fmt.Errorf("resolve following: %w", err)
		}
		acts, err = s.activities.ListByActors(ctx, followeeIDs, offset, limit+1)
	case cache.FeedKindYou:
		acts, err = s.activities.ListByActor(ctx, requesterID, pinExcluded, offset, limit+1)
	case cache.FeedKindIncoming:
		acts, err = s.activities.ListByTarget(ctx, requesterID, pinExcluded, offset, limit+1)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s feed: %w", kind, err)
	}

	hasMore := len(acts) > limit
	if hasMore {
		acts = acts[:limit]
	}
	return &cachedPage{Activities: acts, HasMore: hasMore, Limit: limit}, nil
}

// hydrate attaches display identities, review summaries and live counts to
// the raw activity rows.
func (s *Service) hydrate(ctx context.Context, requesterID uint64, acts []dbmysql.Activity) ([]Item, error) {
	userIDs := make([]uint64, 0, len(acts)*2)
	reviewIDs := make([]uint64, 0, len(acts))
	commentIDs := make([]uint64, 0, len(acts))
	seenUser := map[uint64]bool{}
	seenReview := map[uint64]bool{}

	for _, act := range acts {
		if !seenUser[act.UserID] {
			seenUser[act.UserID] = true
			userIDs = append(userIDs, act.UserID)
		}
		if act.TargetUserID != nil && !seenUser[*act.TargetUserID] {
			seenUser[*act.TargetUserID] = true
			userIDs = append(userIDs, *act.TargetUserID)
		}
		if act.ReviewID != nil && !seenReview[*act.ReviewID] {
			seenReview[*act.ReviewID] = true
			reviewIDs = append(reviewIDs, *act.ReviewID)
		}
		if act.CommentID != nil {
			commentIDs = append(commentIDs, *act.CommentID)
		}
	}

	users, err := s.lookups.UsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}
	reviews, err := s.lookups.ReviewsByIDs(ctx, reviewIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve reviews: %w", err)
	}
	comments, err := s.lookups.CommentsByIDs(ctx, commentIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve comments: %w", err)
	}
	likeCounts, err := s.lookups.LikeCounts(ctx, reviewIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve like counts: %w", err)
	}
	commentCounts, err := s.lookups.CommentCounts(ctx, reviewIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve comment counts: %w", err)
	}
	liked, err := s.lookups.LikedReviews(ctx, requesterID, reviewIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve requester likes: %w", err)
	}

	items := make([]Item, 0, len(acts))
	for _, act := range acts {
		item := Item{
			ActivityID: act.ActivityID,
			Type:       act.Type,
			Actor:      userView(users[act.UserID]),
			CreatedAt:  act.CreatedAt,
		}

		if act.TargetUserID != nil {
			if u, ok := users[*act.TargetUserID]; ok {
				tv := userView(u)
				item.TargetUser = &tv
			}
		}
		if act.ReviewID != nil {
			if rv, ok := reviews[*act.ReviewID]; ok {
				item.Review = &ReviewSummary{
					ReviewID:     rv.ReviewID,
					AlbumID:      rv.AlbumID,
					AlbumTitle:   rv.AlbumTitle,
					AlbumArtist:  rv.AlbumArtist,
					CoverURL:     rv.CoverURL,
					Rating:       rv.Rating,
					Excerpt:      excerpt(rv.Content),
					LikeCount:    likeCounts[rv.ReviewID],
					CommentCount: commentCounts[rv.ReviewID],
					LikedByMe:    liked[rv.ReviewID],
				}
			}
		}
		if act.CommentID != nil {
			if c, ok := comments[*act.CommentID]; ok {
				item.Comment = &CommentView{
					CommentID: c.CommentID,
					Excerpt:   excerpt(c.Content),
				}
			}
		}

		items = append(items, item)
	}
	return items, nil
}

func userView(u dbmysql.User) UserView {
	return UserView{
		UserID:      u.UserID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}
