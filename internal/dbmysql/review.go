package dbmysql

import "time"

// Review is a user's rating of one album. The album summary is denormalized
// onto the row (title/artist/year/cover) because album metadata is imported
// by an external catalog pipeline and only displayed here.
type Review struct {
	ReviewID uint64 `gorm:"primaryKey;column:review_id;autoIncrement" json:"review_id"`
	UserID   uint64 `gorm:"column:user_id;not null;index:idx_review_user_created" json:"user_id"`

	AlbumID     string `gorm:"column:album_id;size:64;not null;index" json:"album_id"`
	AlbumTitle  string `gorm:"column:album_title;size:255" json:"album_title"`
	AlbumArtist string `gorm:"column:album_artist;size:255" json:"album_artist"`
	AlbumYear   int    `gorm:"column:album_year" json:"album_year"`
	CoverURL    string `gorm:"column:cover_url;size:512" json:"cover_url"`

	Rating   int    `gorm:"column:rating;not null" json:"rating"` // 1..10
	Content  string `gorm:"column:content;type:text" json:"content"`
	Genres   string `gorm:"column:genres;size:255" json:"genres"` // comma-joined tags
	IsPinned bool   `gorm:"column:is_pinned;default:false" json:"is_pinned"`

	CreatedAt time.Time `gorm:"column:created_at;index:idx_review_user_created" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }

// MaxPinnedReviews caps how many reviews a user may pin to their profile.
const MaxPinnedReviews = 4
