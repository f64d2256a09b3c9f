package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"halfnote/internal/activity"
	"halfnote/internal/dbmysql"
)

var (
	ErrNotOwner        = errors.New("not the review owner")
	ErrAlreadyReviewed = errors.New("album already reviewed by this user")
	ErrInvalidRating   = errors.New("rating must be between 1 and 10")
	ErrEmptyComment    = errors.New("comment content is required")
	ErrPinLimit        = fmt.Errorf("at most %d reviews can be pinned", dbmysql.MaxPinnedReviews)
)

// UserSource resolves user identities; the service needs usernames to
// compute profile/review cache keys.
type UserSource interface {
	UserByID(ctx context.Context, userID uint64) (*dbmysql.User, error)
}

// Service owns every review-level mutation: each one writes its domain rows
// and activity-log entry co-transactionally through the repository, then
// fires the cache invalidation fan-out after commit.
type Service struct {
	reviews  Reviews
	likes    Likes
	comments Comments
	users    UserSource
	recorder *activity.Recorder
}

func NewService(reviews Reviews, likes Likes, comments Comments, users UserSource, recorder *activity.Recorder) *Service {
	return &Service{
		reviews:  reviews,
		likes:    likes,
		comments: comments,
		users:    users,
		recorder: recorder,
	}
}

// CreateReviewInput carries the caller-supplied review fields. The album
// summary arrives already resolved by the external catalog pipeline.
type CreateReviewInput struct {
	AlbumID     string
	AlbumTitle  string
	AlbumArtist string
	AlbumYear   int
	CoverURL    string
	Rating      int
	Content     string
	Genres      []string
}

func (s *Service) CreateReview(ctx context.Context, userID uint64, in CreateReviewInput) (*dbmysql.Review, error) {
	if in.Rating < 1 || in.Rating > 10 {
		return nil, ErrInvalidRating
	}

	exists, err := s.reviews.ExistsForUserAlbum(ctx, userID, in.AlbumID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	review := &dbmysql.Review{
		UserID:      userID,
		AlbumID:     in.AlbumID,
		AlbumTitle:  in.AlbumTitle,
		AlbumArtist: in.AlbumArtist,
		AlbumYear:   in.AlbumYear,
		CoverURL:    in.CoverURL,
		Rating:      in.Rating,
		Content:     in.Content,
		Genres:      strings.Join(in.Genres, ","),
	}

	act, err := s.reviews.CreateWithActivity(ctx, review)
	if err != nil {
		return nil, err
	}

	s.recorder.FanOut(ctx, act)
	s.invalidateReviewCaches(ctx, review)
	return review, nil
}

// UpdateReview edits the owner's rating/content/genres. Edits do not append
// activities, but they do stale the review and its owner's cached reads.
func (s *Service) UpdateReview(ctx context.Context, userID, reviewID uint64, rating int, content string, genres []string) (*dbmysql.Review, error) {
	review, err := s.reviews.ByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrNotOwner
	}
	if rating < 1 || rating > 10 {
		return nil, ErrInvalidRating
	}

	review.Rating = rating
	review.Content = content
	review.Genres = strings.Join(genres, ",")
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	s.invalidateReviewCaches(ctx, review)
	return review, nil
}

// DeleteReview removes the review and cascades its likes, comments and
// activity rows, then drops the actor's feed fan-out since entries vanished
// from every feed that showed them.
func (s *Service) DeleteReview(ctx context.Context, userID, reviewID uint64) error {
	review, err := s.reviews.ByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return ErrNotOwner
	}

	if err := s.reviews.DeleteCascade(ctx, reviewID); err != nil {
		return err
	}

	s.recorder.Invalidator().Invalidate(ctx, userID, nil)
	s.invalidateReviewCaches(ctx, review)
	return nil
}

// ToggleLike likes the review when no like exists and unlikes it otherwise.
// Returns whether the review is liked after the call and the live count.
func (s *Service) ToggleLike(ctx context.Context, userID, reviewID uint64) (bool, int64, error) {
	review, err := s.reviews.ByID(ctx, reviewID)
	if err != nil {
		return false, 0, err
	}

	liked, err := s.likes.Exists(ctx, userID, reviewID)
	if err != nil {
		return false, 0, err
	}

	if liked {
		if _, err := s.likes.UnlikeWithRetraction(ctx, userID, reviewID); err != nil {
			return false, 0, err
		}
		s.invalidateRetraction(ctx, userID, review)
	} else {
		act, err := s.likes.LikeWithActivity(ctx, userID, review)
		if err != nil {
			// A concurrent like beat us; treat as already liked.
			if errors.Is(err, ErrAlreadyLiked) {
				count, countErr := s.likes.Count(ctx, reviewID)
				return true, count, countErr
			}
			return false, 0, err
		}
		s.recorder.FanOut(ctx, act)
		s.invalidateReviewCaches(ctx, review)
	}

	count, err := s.likes.Count(ctx, reviewID)
	if err != nil {
		return !liked, 0, err
	}
	return !liked, count, nil
}

// AddComment posts a comment on a review and records the activity, targeted
// at the review owner unless the author is commenting on their own review.
func (s *Service) AddComment(ctx context.Context, userID, reviewID uint64, content string) (*dbmysql.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyComment
	}

	review, err := s.reviews.ByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	comment := &dbmysql.Comment{
		ReviewID: reviewID,
		UserID:   userID,
		Content:  content,
	}
	act, err := s.comments.CreateCommentWithActivity(ctx, comment, review.UserID)
	if err != nil {
		return nil, err
	}

	s.recorder.FanOut(ctx, act)
	s.invalidateReviewCaches(ctx, review)
	return comment, nil
}

func (s *Service) UpdateComment(ctx context.Context, userID, commentID uint64, content string) (*dbmysql.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyComment
	}

	comment, err := s.comments.CommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotOwner
	}

	comment.Content = content
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes the author's comment and its activity rows.
func (s *Service) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	comment, err := s.comments.CommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrNotOwner
	}

	review, err := s.reviews.ByID(ctx, comment.ReviewID)
	if err != nil {
		return err
	}

	if err := s.comments.DeleteCommentCascade(ctx, commentID); err != nil {
		return err
	}

	s.invalidateRetraction(ctx, userID, review)
	return nil
}

// ListComments returns a review's comments oldest-first.
func (s *Service) ListComments(ctx context.Context, reviewID uint64) ([]dbmysql.Comment, error) {
	if _, err := s.reviews.ByID(ctx, reviewID); err != nil {
		return nil, err
	}
	return s.comments.ListByReview(ctx, reviewID)
}

// TogglePin pins or unpins one of the caller's own reviews, holding the
// per-user pin cap. Pin activities feed only the friends view; the
// assembler filters them from you/incoming.
func (s *Service) TogglePin(ctx context.Context, userID, reviewID uint64) (bool, error) {
	review, err := s.reviews.ByID(ctx, reviewID)
	if err != nil {
		return false, err
	}
	if review.UserID != userID {
		return false, ErrNotOwner
	}

	pinning := !review.IsPinned
	if pinning {
		pinned, err := s.reviews.PinnedCount(ctx, userID)
		if err != nil {
			return false, err
		}
		if pinned >= dbmysql.MaxPinnedReviews {
			return false, ErrPinLimit
		}
	}

	act, err := s.reviews.SetPinnedWithActivity(ctx, review, pinning)
	if err != nil {
		return false, err
	}

	if act != nil {
		s.recorder.FanOut(ctx, act)
	} else {
		s.recorder.Invalidator().Invalidate(ctx, userID, nil)
	}
	s.invalidateReviewCaches(ctx, review)
	return pinning, nil
}

// GetReview is the read side used by the API layer.
func (s *Service) GetReview(ctx context.Context, reviewID uint64) (*dbmysql.Review, error) {
	return s.reviews.ByID(ctx, reviewID)
}

// invalidateReviewCaches drops the owner-keyed caches a review mutation
// stales. Failures are absorbed inside the invalidator.
func (s *Service) invalidateReviewCaches(ctx context.Context, review *dbmysql.Review) {
	owner, err := s.users.UserByID(ctx, review.UserID)
	if err != nil {
		return
	}
	s.recorder.Invalidator().InvalidateReviewChange(ctx, owner.Username, review.ReviewID, review.AlbumID)
}

// invalidateRetraction covers the undo paths (unlike, comment deletion) where
// the activity rows were already retracted inside the repository transaction.
// The fan-out matches the recording side, including the review owner's
// incoming key when the actor is not the owner.
func (s *Service) invalidateRetraction(ctx context.Context, actorID uint64, review *dbmysql.Review) {
	var target *uint64
	if review.UserID != actorID {
		owner := review.UserID
		target = &owner
	}
	s.recorder.Invalidator().Invalidate(ctx, actorID, target)
	s.invalidateReviewCaches(ctx, review)
}
