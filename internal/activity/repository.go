package activity

import (
	"context"

	"halfnote/internal/dbmysql"

	"gorm.io/gorm"
)

// Match selects existing activity rows for retraction. Nil reference fields
// are wildcards; a retract of "this user's like on this review" sets Type,
// ActorID and ReviewID and leaves CommentID nil.
type Match struct {
	Type      dbmysql.ActivityType
	ActorID   uint64
	ReviewID  *uint64
	CommentID *uint64
	TargetID  *uint64
}

// ActivityRepository owns the append-only activities table. Rows are
// inserted and deleted, never updated.
type ActivityRepository interface {
	Create(ctx context.Context, act *dbmysql.Activity) error
	DeleteMatching(ctx context.Context, m Match) (int64, error)
	DeleteByReview(ctx context.Context, reviewID uint64) error
	DeleteByComment(ctx context.Context, commentID uint64) error

	// Feed queries. All return rows ordered created_at DESC, id DESC and
	// fetch up to limit rows starting at offset.
	ListByActors(ctx context.Context, actorIDs []uint64, offset, limit int) ([]dbmysql.Activity, error)
	ListByActor(ctx context.Context, actorID uint64, excludeTypes []dbmysql.ActivityType, offset, limit int) ([]dbmysql.Activity, error)
	ListByTarget(ctx context.Context, targetID uint64, excludeTypes []dbmysql.ActivityType, offset, limit int) ([]dbmysql.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, act *dbmysql.Activity) error {
	return r.db.WithContext(ctx).Create(act).Error
}

func (r *activityRepository) DeleteMatching(ctx context.Context, m Match) (int64, error) {
	q := r.db.WithContext(ctx).
		Where("activity_type = ? AND user_id = ?", m.Type, m.ActorID)
	if m.ReviewID != nil {
		q = q.Where("review_id = ?", *m.ReviewID)
	}
	if m.CommentID != nil {
		q = q.Where("comment_id = ?", *m.CommentID)
	}
	if m.TargetID != nil {
		q = q.Where("target_user_id = ?", *m.TargetID)
	}

	result := q.Delete(&dbmysql.Activity{})
	return result.RowsAffected, result.Error
}

func (r *activityRepository) DeleteByReview(ctx context.Context, reviewID uint64) error {
	return r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Delete(&dbmysql.Activity{}).Error
}

func (r *activityRepository) DeleteByComment(ctx context.Context, commentID uint64) error {
	return r.db.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Delete(&dbmysql.Activity{}).Error
}

func (r *activityRepository) ListByActors(ctx context.Context, actorIDs []uint64, offset, limit int) ([]dbmysql.Activity, error) {
	if len(actorIDs) == 0 {
		return []dbmysql.Activity{}, nil
	}

	var acts []dbmysql.Activity
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", actorIDs).
		Order("created_at DESC, activity_id DESC").
		Offset(offset).
		Limit(limit).
		Find(&acts).Error
	return acts, err
}

func (r *activityRepository) ListByActor(ctx context.Context, actorID uint64, excludeTypes []dbmysql.ActivityType, offset, limit int) ([]dbmysql.Activity, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", actorID)
	if len(excludeTypes) > 0 {
		q = q.Where("activity_type NOT IN ?", excludeTypes)
	}

	var acts []dbmysql.Activity
	err := q.
		Order("created_at DESC, activity_id DESC").
		Offset(offset).
		Limit(limit).
		Find(&acts).Error
	return acts, err
}

func (r *activityRepository) ListByTarget(ctx context.Context, targetID uint64, excludeTypes []dbmysql.ActivityType, offset, limit int) ([]dbmysql.Activity, error) {
	// Self-targeted rows are unrepresentable (the constructors drop the
	// target when it equals the actor) but the query excludes them anyway.
	q := r.db.WithContext(ctx).
		Where("target_user_id = ? AND user_id <> ?", targetID, targetID)
	if len(excludeTypes) > 0 {
		q = q.Where("activity_type NOT IN ?", excludeTypes)
	}

	var acts []dbmysql.Activity
	err := q.
		Order("created_at DESC, activity_id DESC").
		Offset(offset).
		Limit(limit).
		Find(&acts).Error
	return acts, err
}

// Ensure interface is satisfied at compile time.
var _ ActivityRepository = (*activityRepository)(nil)
