package social

import (
	"context"
	"errors"

	"halfnote/internal/activity"
	"halfnote/internal/dbmysql"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// UserSource resolves usernames to user rows; users are owned by the
// accounts service, this core only reads them.
type UserSource interface {
	UserByUsername(ctx context.Context, username string) (*dbmysql.User, error)
	UserByID(ctx context.Context, userID uint64) (*dbmysql.User, error)
}

type gormUserSource struct {
	db *gorm.DB
}

// NewUserSource returns a read-only user lookup over the shared DB.
func NewUserSource(db *gorm.DB) UserSource {
	return &gormUserSource{db: db}
}

func (r *gormUserSource) UserByUsername(ctx context.Context, username string) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserSource) UserByID(ctx context.Context, userID uint64) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Counts is the follow-count pair returned after a graph mutation so the
// client can update without a second round trip.
type Counts struct {
	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`
}

// Service mutates the social graph and keeps the activity log and cache in
// step: edge write first, then the user_followed record (whose fan-out
// drops follower feed keys), then the profile-aggregate invalidation.
type Service struct {
	follows  FollowRepository
	users    UserSource
	recorder *activity.Recorder
}

func NewService(follows FollowRepository, users UserSource, recorder *activity.Recorder) *Service {
	return &Service{follows: follows, users: users, recorder: recorder}
}

// Follow makes follower follow the named user.
func (s *Service) Follow(ctx context.Context, followerID uint64, followeeUsername string) (*Counts, error) {
	follower, err := s.users.UserByID(ctx, followerID)
	if err != nil {
		return nil, err
	}
	followee, err := s.users.UserByUsername(ctx, followeeUsername)
	if err != nil {
		return nil, err
	}

	if err := s.follows.Follow(ctx, followerID, followee.UserID); err != nil {
		return nil, err
	}

	if _, err := s.recorder.Record(ctx, activity.NewUserFollowed(followerID, followee.UserID)); err != nil {
		// The edge is in; a lost activity row must not strand it.
		_ = s.follows.Unfollow(ctx, followerID, followee.UserID)
		return nil, err
	}

	s.recorder.Invalidator().InvalidateFollowChange(ctx, followerID, follower.Username, followee.Username)
	return s.counts(ctx, followerID, followee.UserID)
}

// Unfollow removes the edge and retracts the user_followed activity.
func (s *Service) Unfollow(ctx context.Context, followerID uint64, followeeUsername string) (*Counts, error) {
	follower, err := s.users.UserByID(ctx, followerID)
	if err != nil {
		return nil, err
	}
	followee, err := s.users.UserByUsername(ctx, followeeUsername)
	if err != nil {
		return nil, err
	}

	if err := s.follows.Unfollow(ctx, followerID, followee.UserID); err != nil {
		return nil, err
	}

	target := followee.UserID
	if _, err := s.recorder.Retract(ctx, activity.Match{
		Type:     dbmysql.ActivityUserFollowed,
		ActorID:  followerID,
		TargetID: &target,
	}); err != nil {
		return nil, err
	}

	s.recorder.Invalidator().InvalidateFollowChange(ctx, followerID, follower.Username, followee.Username)
	return s.counts(ctx, followerID, followee.UserID)
}

// IsFollowing reports whether follower follows the named user.
func (s *Service) IsFollowing(ctx context.Context, followerID uint64, followeeUsername string) (bool, error) {
	followee, err := s.users.UserByUsername(ctx, followeeUsername)
	if err != nil {
		return false, err
	}
	return s.follows.IsFollowing(ctx, followerID, followee.UserID)
}

func (s *Service) counts(ctx context.Context, followerID, followeeID uint64) (*Counts, error) {
	followingCount, err := s.follows.FollowingCount(ctx, followerID)
	if err != nil {
		return nil, err
	}
	followerCount, err := s.follows.FollowerCount(ctx, followeeID)
	if err != nil {
		return nil, err
	}
	return &Counts{FollowerCount: followerCount, FollowingCount: followingCount}, nil
}
