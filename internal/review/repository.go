package review

import (
	"context"
	"errors"

	"halfnote/internal/activity"
	"halfnote/internal/dbmysql"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrAlreadyLiked    = errors.New("review already liked")
)

// Reviews covers review rows. Mutations that must land together with their
// activity-log entry run inside one transaction in the implementation, so a
// failed log append rolls the domain write back too.
type Reviews interface {
	CreateWithActivity(ctx context.Context, review *dbmysql.Review) (*dbmysql.Activity, error)
	ByID(ctx context.Context, reviewID uint64) (*dbmysql.Review, error)
	Update(ctx context.Context, review *dbmysql.Review) error
	DeleteCascade(ctx context.Context, reviewID uint64) error
	ExistsForUserAlbum(ctx context.Context, userID uint64, albumID string) (bool, error)
	PinnedCount(ctx context.Context, userID uint64) (int64, error)
	SetPinnedWithActivity(ctx context.Context, review *dbmysql.Review, pinned bool) (*dbmysql.Activity, error)
}

// Likes covers the (user, review) like pairs and their activity rows.
type Likes interface {
	LikeWithActivity(ctx context.Context, userID uint64, review *dbmysql.Review) (*dbmysql.Activity, error)
	UnlikeWithRetraction(ctx context.Context, userID, reviewID uint64) (bool, error)
	Exists(ctx context.Context, userID, reviewID uint64) (bool, error)
	Count(ctx context.Context, reviewID uint64) (int64, error)
}

// Comments covers review comments and their activity rows.
type Comments interface {
	CreateCommentWithActivity(ctx context.Context, comment *dbmysql.Comment, reviewOwnerID uint64) (*dbmysql.Activity, error)
	CommentByID(ctx context.Context, commentID uint64) (*dbmysql.Comment, error)
	UpdateComment(ctx context.Context, comment *dbmysql.Comment) error
	DeleteCommentCascade(ctx context.Context, commentID uint64) error
	ListByReview(ctx context.Context, reviewID uint64) ([]dbmysql.Comment, error)
}

// Repository implements Reviews, Likes and Comments on one GORM handle.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --------- REVIEWS ---------

func (r *Repository) CreateWithActivity(ctx context.Context, review *dbmysql.Review) (*dbmysql.Activity, error) {
	var act *dbmysql.Activity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return err
		}
		act = activity.NewReviewCreated(review.UserID, review.ReviewID)
		return tx.Create(act).Error
	})
	if err != nil {
		return nil, err
	}
	return act, nil
}

func (r *Repository) ByID(ctx context.Context, reviewID uint64) (*dbmysql.Review, error) {
	var review dbmysql.Review
	err := r.db.WithContext(ctx).First(&review, "review_id = ?", reviewID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *Repository) Update(ctx context.Context, review *dbmysql.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

// DeleteCascade removes a review together with its likes, comments and every
// activity row referencing it, in one transaction.
func (r *Repository) DeleteCascade(ctx context.Context, reviewID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", reviewID).Delete(&dbmysql.Activity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", reviewID).Delete(&dbmysql.ReviewLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", reviewID).Delete(&dbmysql.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&dbmysql.Review{}, "review_id = ?", reviewID).Error
	})
}

func (r *Repository) ExistsForUserAlbum(ctx context.Context, userID uint64, albumID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Review{}).
		Where("user_id = ? AND album_id = ?", userID, albumID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) PinnedCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Review{}).
		Where("user_id = ? AND is_pinned = ?", userID, true).
		Count(&count).Error
	return count, err
}

// SetPinnedWithActivity flips the pin flag. Pinning appends a review_pinned
// activity; unpinning retracts it. Returns the appended activity, nil when
// unpinning.
func (r *Repository) SetPinnedWithActivity(ctx context.Context, review *dbmysql.Review, pinned bool) (*dbmysql.Activity, error) {
	var act *dbmysql.Activity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&dbmysql.Review{}).
			Where("review_id = ?", review.ReviewID).
			Update("is_pinned", pinned).Error; err != nil {
			return err
		}
		review.IsPinned = pinned

		if pinned {
			act = activity.NewReviewPinned(review.UserID, review.ReviewID)
			return tx.Create(act).Error
		}
		return tx.Where("activity_type = ? AND user_id = ? AND review_id = ?",
			dbmysql.ActivityReviewPinned, review.UserID, review.ReviewID).
			Delete(&dbmysql.Activity{}).Error
	})
	if err != nil {
		return nil, err
	}
	return act, nil
}

// --------- LIKES ---------

func (r *Repository) LikeWithActivity(ctx context.Context, userID uint64, review *dbmysql.Review) (*dbmysql.Activity, error) {
	var act *dbmysql.Activity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := &dbmysql.ReviewLike{UserID: userID, ReviewID: review.ReviewID}
		if err := tx.Create(like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyLiked
			}
			return err
		}
		act = activity.NewReviewLiked(userID, review.ReviewID, review.UserID)
		return tx.Create(act).Error
	})
	if err != nil {
		return nil, err
	}
	return act, nil
}

// UnlikeWithRetraction removes the like pair and its activity rows together.
// Returns false when no like existed.
func (r *Repository) UnlikeWithRetraction(ctx context.Context, userID, reviewID uint64) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND review_id = ?", userID, reviewID).
			Delete(&dbmysql.ReviewLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		removed = true

		return tx.Where("activity_type = ? AND user_id = ? AND review_id = ?",
			dbmysql.ActivityReviewLiked, userID, reviewID).
			Delete(&dbmysql.Activity{}).Error
	})
	return removed, err
}

func (r *Repository) Exists(ctx context.Context, userID, reviewID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.ReviewLike{}).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Count(ctx context.Context, reviewID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.ReviewLike{}).
		Where("review_id = ?", reviewID).
		Count(&count).Error
	return count, err
}

// --------- COMMENTS ---------

func (r *Repository) CreateCommentWithActivity(ctx context.Context, comment *dbmysql.Comment, reviewOwnerID uint64) (*dbmysql.Activity, error) {
	var act *dbmysql.Activity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		act = activity.NewCommentCreated(comment.UserID, comment.ReviewID, comment.CommentID, reviewOwnerID)
		return tx.Create(act).Error
	})
	if err != nil {
		return nil, err
	}
	return act, nil
}

func (r *Repository) CommentByID(ctx context.Context, commentID uint64) (*dbmysql.Comment, error) {
	var comment dbmysql.Comment
	err := r.db.WithContext(ctx).First(&comment, "comment_id = ?", commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *Repository) UpdateComment(ctx context.Context, comment *dbmysql.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// DeleteCommentCascade removes a comment and its activity rows together.
func (r *Repository) DeleteCommentCascade(ctx context.Context, commentID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", commentID).Delete(&dbmysql.Activity{}).Error; err != nil {
			return err
		}
		return tx.Delete(&dbmysql.Comment{}, "comment_id = ?", commentID).Error
	})
}

func (r *Repository) ListByReview(ctx context.Context, reviewID uint64) ([]dbmysql.Comment, error) {
	var comments []dbmysql.Comment
	err := r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// Ensure interfaces are satisfied at compile time.
var (
	_ Reviews  = (*Repository)(nil)
	_ Likes    = (*Repository)(nil)
	_ Comments = (*Repository)(nil)
)
