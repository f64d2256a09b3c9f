package dbmysql

import "time"

// ReviewLike marks that a user liked a review. At most one like per
// (user, review) pair, enforced by the composite unique index.
type ReviewLike struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"column:user_id;not null;index:idx_like_pair,unique" json:"user_id"`
	ReviewID  uint64    `gorm:"column:review_id;not null;index:idx_like_pair,unique;index:idx_like_review" json:"review_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ReviewLike) TableName() string { return "review_likes" }
