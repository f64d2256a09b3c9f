package cache

import "fmt"

// Key schema. Feed pages are namespaced by subject user and feed kind;
// everything else is agg:{entity}:{id}.

func FeedKey(userID uint64, kind string) string {
	return fmt.Sprintf("feed:%d:%s", userID, kind)
}

// FeedKeys returns the feed keys for every feed kind of one user.
func FeedKeys(userID uint64, kinds ...string) []string {
	keys := make([]string, 0, len(kinds))
	for _, k := range kinds {
		keys = append(keys, FeedKey(userID, k))
	}
	return keys
}

func ProfileKey(username string) string {
	return fmt.Sprintf("agg:user:%s", username)
}

func UserReviewsKey(username string) string {
	return fmt.Sprintf("reviews:user:%s", username)
}

func FollowingKey(userID uint64) string {
	return fmt.Sprintf("following:%d", userID)
}

func ReviewKey(reviewID uint64) string {
	return fmt.Sprintf("agg:review:%d", reviewID)
}

func AlbumKey(albumID string) string {
	return fmt.Sprintf("agg:album:%s", albumID)
}
