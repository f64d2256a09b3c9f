package social

import (
	"context"
	"errors"

	"halfnote/internal/dbmysql"

	"gorm.io/gorm"
)

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrFollowNotFound   = errors.New("follow relationship not found")
	ErrSelfFollow       = errors.New("cannot follow yourself")
)

// FollowRepository is the social graph contract: a directed edge table keyed
// by (follower, followee). The rest of the core only ever asks "who follows
// X" and "who does X follow"; it never touches User rows to walk the graph.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID uint64) error
	Unfollow(ctx context.Context, followerID, followeeID uint64) error
	IsFollowing(ctx context.Context, followerID, followeeID uint64) (bool, error)
	FollowerIDs(ctx context.Context, userID uint64) ([]uint64, error)
	FollowingIDs(ctx context.Context, userID uint64) ([]uint64, error)
	FollowerCount(ctx context.Context, userID uint64) (int64, error)
	FollowingCount(ctx context.Context, userID uint64) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followeeID uint64) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}

	edge := &dbmysql.Follow{FollowerID: followerID, FolloweeID: followeeID}
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyFollowing
		}
		return err
	}
	return nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID uint64) error {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&dbmysql.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFollowNotFound
	}
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&dbmysql.Follow{}).
		Where("followee_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&dbmysql.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *followRepository) FollowerCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Follow{}).
		Where("followee_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *followRepository) FollowingCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}

// Ensure interface is satisfied at compile time.
var _ FollowRepository = (*followRepository)(nil)
