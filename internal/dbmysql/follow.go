package dbmysql

import "time"

// Follow is one directed edge in the social graph: follower -> followee.
// The composite unique index prevents duplicate follows; the relation is
// asymmetric, the reverse edge is a separate row.
type Follow struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FollowerID uint64    `gorm:"column:follower_id;not null;index:idx_follow_pair,unique;index:idx_follow_follower" json:"follower_id"`
	FolloweeID uint64    `gorm:"column:followee_id;not null;index:idx_follow_pair,unique;index:idx_follow_followee" json:"followee_id"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Follow) TableName() string { return "follows" }
