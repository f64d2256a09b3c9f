package cache

// Feed kinds, shared between the feed assembler (read side) and the
// invalidator (write side) so both agree on the full key set for one user.
const (
	FeedKindFriends  = "friends"
	FeedKindYou      = "you"
	FeedKindIncoming = "incoming"
)

// AllFeedKinds lists every feed kind; the conservative invalidation policy
// drops all of an actor's feed keys on any action of theirs.
var AllFeedKinds = []string{FeedKindFriends, FeedKindYou, FeedKindIncoming}
