package dbmysql

import "time"

type ActivityType string

const (
	ActivityReviewCreated  ActivityType = "review_created"
	ActivityReviewLiked    ActivityType = "review_liked"
	ActivityReviewPinned   ActivityType = "review_pinned"
	ActivityUserFollowed   ActivityType = "user_followed"
	ActivityCommentCreated ActivityType = "comment_created"
)

// Activity is one append-only entry in the activity log: a single
// socially-visible action by UserID. Which of the optional references are
// set depends on the activity type; rows are only ever inserted and deleted,
// never updated. Use the constructors in internal/activity to build rows
// with the right fields for their type.
type Activity struct {
	ActivityID uint64       `gorm:"primaryKey;column:activity_id;autoIncrement" json:"activity_id"`
	UserID     uint64       `gorm:"column:user_id;not null;index:idx_activity_actor_created" json:"user_id"`
	Type       ActivityType `gorm:"column:activity_type;size:32;not null" json:"activity_type"`

	// TargetUserID is who the action is directed at: the followee, or the
	// review owner when liking/commenting on someone else's review.
	TargetUserID *uint64 `gorm:"column:target_user_id;index:idx_activity_target_created" json:"target_user_id,omitempty"`
	ReviewID     *uint64 `gorm:"column:review_id;index:idx_activity_review" json:"review_id,omitempty"`
	CommentID    *uint64 `gorm:"column:comment_id" json:"comment_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;index:idx_activity_actor_created;index:idx_activity_target_created" json:"created_at"`
}

func (Activity) TableName() string { return "activities" }
