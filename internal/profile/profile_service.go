package profile

import (
	"context"
	"encoding/json"
	"time"

	"halfnote/internal/cache"
	"halfnote/internal/dbmysql"
	"halfnote/internal/social"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReviewSource lists a user's reviews for their profile page.
type ReviewSource interface {
	ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]dbmysql.Review, error)
	CountByUser(ctx context.Context, userID uint64) (int64, error)
}

type gormReviewSource struct {
	db *gorm.DB
}

func NewReviewSource(db *gorm.DB) ReviewSource {
	return &gormReviewSource{db: db}
}

func (r *gormReviewSource) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]dbmysql.Review, error) {
	var reviews []dbmysql.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_pinned DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

func (r *gormReviewSource) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Review{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// View is the cached profile aggregate: identity plus the counts the
// profile header shows.
type View struct {
	UserID         uint64    `json:"user_id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	Bio            string    `json:"bio"`
	AvatarURL      string    `json:"avatar_url"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	ReviewCount    int64     `json:"review_count"`
	JoinedAt       time.Time `json:"joined_at"`
}

// ReviewsPage is one cached page of a user's reviews.
type ReviewsPage struct {
	Reviews []dbmysql.Review `json:"reviews"`
	Total   int64            `json:"total"`
	HasMore bool             `json:"has_more"`
}

// Service serves the cached profile read paths. Cache entries here are
// slower-moving than feed pages (10 and 5 minute TTLs); follow changes and
// review mutations drop them through the invalidator.
type Service struct {
	users   social.UserSource
	follows social.FollowRepository
	reviews ReviewSource
	cache   cache.Store

	profileTTL time.Duration
	reviewsTTL time.Duration
	logger     *zap.Logger
}

func NewService(
	users social.UserSource,
	follows social.FollowRepository,
	reviews ReviewSource,
	store cache.Store,
	profileTTL, reviewsTTL time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:      users,
		follows:    follows,
		reviews:    reviews,
		cache:      store,
		profileTTL: profileTTL,
		reviewsTTL: reviewsTTL,
		logger:     logger,
	}
}

func (s *Service) GetProfile(ctx context.Context, username string) (*View, error) {
	key := cache.ProfileKey(username)
	if raw, hit, _ := s.cache.Get(ctx, key); hit {
		var view View
		if err := json.Unmarshal(raw, &view); err == nil {
			return &view, nil
		}
		_ = s.cache.Delete(ctx, key)
	}

	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	followerCount, err := s.follows.FollowerCount(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	followingCount, err := s.follows.FollowingCount(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	reviewCount, err := s.reviews.CountByUser(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	view := &View{
		UserID:         user.UserID,
		Username:       user.Username,
		DisplayName:    user.DisplayName,
		Bio:            user.Bio,
		AvatarURL:      user.AvatarURL,
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
		ReviewCount:    reviewCount,
		JoinedAt:       user.CreatedAt,
	}

	if raw, err := json.Marshal(view); err == nil {
		_ = s.cache.Set(ctx, key, raw, s.profileTTL)
	}
	return view, nil
}

// ListUserReviews pages through a user's reviews, pinned first. Only the
// first page is cached, under the key the review invalidation path drops.
func (s *Service) ListUserReviews(ctx context.Context, username string, offset, limit int) (*ReviewsPage, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	key := cache.UserReviewsKey(username)
	if offset == 0 {
		if raw, hit, _ := s.cache.Get(ctx, key); hit {
			var page ReviewsPage
			if err := json.Unmarshal(raw, &page); err == nil && len(page.Reviews) <= limit {
				return &page, nil
			}
			_ = s.cache.Delete(ctx, key)
		}
	}

	reviews, err := s.reviews.ListByUser(ctx, user.UserID, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.reviews.CountByUser(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	page := &ReviewsPage{
		Reviews: reviews,
		Total:   total,
		HasMore: total > int64(offset+len(reviews)),
	}

	if offset == 0 {
		if raw, err := json.Marshal(page); err == nil {
			_ = s.cache.Set(ctx, key, raw, s.reviewsTTL)
		}
	}
	return page, nil
}
