package dbmysql

import "time"

type Comment struct {
	CommentID uint64    `gorm:"primaryKey;column:comment_id;autoIncrement" json:"comment_id"`
	ReviewID  uint64    `gorm:"column:review_id;not null;index:idx_comment_review" json:"review_id"`
	UserID    uint64    `gorm:"column:user_id;not null" json:"user_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }
