package feed

import (
	"context"

	"halfnote/internal/dbmysql"

	"gorm.io/gorm"
)

// LookupRepository batch-resolves the display data and live counts a feed
// page needs: user identities, review rows, comment rows, like/comment
// counts and the requester's own likes. Everything is keyed by id sets so a
// page costs a fixed number of queries regardless of its length.
type LookupRepository interface {
	UsersByIDs(ctx context.Context, ids []uint64) (map[uint64]dbmysql.User, error)
	ReviewsByIDs(ctx context.Context, ids []uint64) (map[uint64]dbmysql.Review, error)
	CommentsByIDs(ctx context.Context, ids []uint64) (map[uint64]dbmysql.Comment, error)
	LikeCounts(ctx context.Context, reviewIDs []uint64) (map[uint64]int64, error)
	CommentCounts(ctx context.Context, reviewIDs []uint64) (map[uint64]int64, error)
	LikedReviews(ctx context.Context, userID uint64, reviewIDs []uint64) (map[uint64]bool, error)
}

type lookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(db *gorm.DB) LookupRepository {
	return &lookupRepository{db: db}
}

func (r *lookupRepository) UsersByIDs(ctx context.Context, ids []uint64) (map[uint64]dbmysql.User, error) {
	out := make(map[uint64]dbmysql.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []dbmysql.User
	err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.UserID] = u
	}
	return out, nil
}

func (r *lookupRepository) ReviewsByIDs(ctx context.Context, ids []uint64) (map[uint64]dbmysql.Review, error) {
	out := make(map[uint64]dbmysql.Review, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var reviews []dbmysql.Review
	err := r.db.WithContext(ctx).Where("review_id IN ?", ids).Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	for _, rv := range reviews {
		out[rv.ReviewID] = rv
	}
	return out, nil
}

func (r *lookupRepository) CommentsByIDs(ctx context.Context, ids []uint64) (map[uint64]dbmysql.Comment, error) {
	out := make(map[uint64]dbmysql.Comment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var comments []dbmysql.Comment
	err := r.db.WithContext(ctx).Where("comment_id IN ?", ids).Find(&comments).Error
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		out[c.CommentID] = c
	}
	return out, nil
}

type countRow struct {
	ReviewID uint64
	N        int64
}

func (r *lookupRepository) LikeCounts(ctx context.Context, reviewIDs []uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return out, nil
	}

	var rows []countRow
	err := r.db.WithContext(ctx).Model(&dbmysql.ReviewLike{}).
		Select("review_id, COUNT(*) AS n").
		Where("review_id IN ?", reviewIDs).
		Group("review_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ReviewID] = row.N
	}
	return out, nil
}

func (r *lookupRepository) CommentCounts(ctx context.Context, reviewIDs []uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return out, nil
	}

	var rows []countRow
	err := r.db.WithContext(ctx).Model(&dbmysql.Comment{}).
		Select("review_id, COUNT(*) AS n").
		Where("review_id IN ?", reviewIDs).
		Group("review_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ReviewID] = row.N
	}
	return out, nil
}

func (r *lookupRepository) LikedReviews(ctx context.Context, userID uint64, reviewIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return out, nil
	}

	var ids []uint64
	err := r.db.WithContext(ctx).Model(&dbmysql.ReviewLike{}).
		Where("user_id = ? AND review_id IN ?", userID, reviewIDs).
		Pluck("review_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// Ensure interface is satisfied at compile time.
var _ LookupRepository = (*lookupRepository)(nil)
