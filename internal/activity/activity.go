package activity

import (
	"errors"
	"fmt"

	"halfnote/internal/dbmysql"
)

// The activity row is a tagged union: which references are populated depends
// on the activity type. These constructors are the only sanctioned way to
// build one, so a call site cannot attach a comment to a follow or forget
// the review on a like.

// NewReviewCreated records that actor published a review.
func NewReviewCreated(actorID, reviewID uint64) *dbmysql.Activity {
	return &dbmysql.Activity{
		UserID:   actorID,
		Type:     dbmysql.ActivityReviewCreated,
		ReviewID: &reviewID,
	}
}

// NewReviewLiked records that actor liked a review. ownerID is the review
// owner; it becomes the target only when someone else's review was liked,
// so self-likes never show up in the owner's incoming feed.
func NewReviewLiked(actorID, reviewID, ownerID uint64) *dbmysql.Activity {
	act := &dbmysql.Activity{
		UserID:   actorID,
		Type:     dbmysql.ActivityReviewLiked,
		ReviewID: &reviewID,
	}
	if ownerID != actorID {
		act.TargetUserID = &ownerID
	}
	return act
}

// NewReviewPinned records that actor pinned one of their own reviews.
func NewReviewPinned(actorID, reviewID uint64) *dbmysql.Activity {
	return &dbmysql.Activity{
		UserID:   actorID,
		Type:     dbmysql.ActivityReviewPinned,
		ReviewID: &reviewID,
	}
}

// NewUserFollowed records that actor followed targetID.
func NewUserFollowed(actorID, targetID uint64) *dbmysql.Activity {
	return &dbmysql.Activity{
		UserID:       actorID,
		Type:         dbmysql.ActivityUserFollowed,
		TargetUserID: &targetID,
	}
}

// NewCommentCreated records that actor commented on a review. ownerID is the
// review owner, targeted only when it is not the actor themselves.
func NewCommentCreated(actorID, reviewID, commentID, ownerID uint64) *dbmysql.Activity {
	act := &dbmysql.Activity{
		UserID:    actorID,
		Type:      dbmysql.ActivityCommentCreated,
		ReviewID:  &reviewID,
		CommentID: &commentID,
	}
	if ownerID != actorID {
		act.TargetUserID = &ownerID
	}
	return act
}

var ErrInvalidActivity = errors.New("invalid activity")

// Validate checks the type/field invariant at the recorder boundary. The
// constructors above cannot produce an invalid row; this guards rows built
// elsewhere (tests, backfills).
func Validate(act *dbmysql.Activity) error {
	if act.UserID == 0 {
		return fmt.Errorf("%w: missing acting user", ErrInvalidActivity)
	}

	switch act.Type {
	case dbmysql.ActivityReviewCreated, dbmysql.ActivityReviewPinned:
		if act.ReviewID == nil {
			return fmt.Errorf("%w: %s requires a review", ErrInvalidActivity, act.Type)
		}
		if act.CommentID != nil {
			return fmt.Errorf("%w: %s cannot reference a comment", ErrInvalidActivity, act.Type)
		}
	case dbmysql.ActivityReviewLiked:
		if act.ReviewID == nil {
			return fmt.Errorf("%w: %s requires a review", ErrInvalidActivity, act.Type)
		}
		if act.CommentID != nil {
			return fmt.Errorf("%w: %s cannot reference a comment", ErrInvalidActivity, act.Type)
		}
	case dbmysql.ActivityCommentCreated:
		if act.ReviewID == nil || act.CommentID == nil {
			return fmt.Errorf("%w: %s requires a review and a comment", ErrInvalidActivity, act.Type)
		}
	case dbmysql.ActivityUserFollowed:
		if act.TargetUserID == nil {
			return fmt.Errorf("%w: %s requires a target user", ErrInvalidActivity, act.Type)
		}
		if act.ReviewID != nil || act.CommentID != nil {
			return fmt.Errorf("%w: %s cannot reference a review or comment", ErrInvalidActivity, act.Type)
		}
	default:
		return fmt.Errorf("%w: unknown activity type %q", ErrInvalidActivity, act.Type)
	}

	if act.TargetUserID != nil && *act.TargetUserID == act.UserID {
		return fmt.Errorf("%w: activity cannot target its own actor", ErrInvalidActivity)
	}
	return nil
}
