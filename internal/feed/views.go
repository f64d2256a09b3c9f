package feed

import (
	"time"

	"halfnote/internal/dbmysql"
)

// UserView is the identity slice of a user shown on a feed item.
type UserView struct {
	UserID      uint64 `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// ReviewSummary carries the review display data attached to review-linked
// activities. LikeCount, CommentCount and LikedByMe are live: they are
// resolved on every read, never stored in the cached page, so a cached feed
// still shows current counts.
type ReviewSummary struct {
	ReviewID     uint64 `json:"review_id"`
	AlbumID      string `json:"album_id"`
	AlbumTitle   string `json:"album_title"`
	AlbumArtist  string `json:"album_artist"`
	CoverURL     string `json:"cover_url"`
	Rating       int    `json:"rating"`
	Excerpt      string `json:"excerpt"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
	LikedByMe    bool   `json:"liked_by_me"`
}

// CommentView is the comment excerpt attached to comment_created items.
type CommentView struct {
	CommentID uint64 `json:"comment_id"`
	Excerpt   string `json:"excerpt"`
}

// Item is one fully hydrated feed entry.
type Item struct {
	ActivityID uint64               `json:"activity_id"`
	Type       dbmysql.ActivityType `json:"activity_type"`
	Actor      UserView             `json:"actor"`
	TargetUser *UserView            `json:"target_user,omitempty"`
	Review     *ReviewSummary       `json:"review,omitempty"`
	Comment    *CommentView         `json:"comment,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// Page is one paginated slice of a feed. NextOffset is nil on the last page.
type Page struct {
	Items      []Item `json:"items"`
	HasMore    bool   `json:"has_more"`
	NextOffset *int   `json:"next_offset,omitempty"`
}

const excerptLen = 280

// excerpt truncates content for feed display without splitting runes.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLen {
		return content
	}
	return string(runes[:excerptLen]) + "…"
}
