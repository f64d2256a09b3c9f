package dbmysql

import (
	"time"

	"gorm.io/gorm"
)

// User is owned by the accounts service; this core only reads identity
// fields for feed display and joins against the follow graph.
type User struct {
	UserID      uint64         `gorm:"primaryKey;column:user_id;autoIncrement" json:"user_id"`
	Username    string         `gorm:"column:username;uniqueIndex;size:50;not null" json:"username"`
	DisplayName string         `gorm:"column:display_name;size:100" json:"display_name"`
	Bio         string         `gorm:"column:bio;type:text" json:"bio"`
	AvatarURL   string         `gorm:"column:avatar_url;size:255" json:"avatar_url"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
