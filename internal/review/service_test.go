package review

import (
	"context"
	"testing"
	"time"

	"halfnote/internal/activity"
	"halfnote/internal/cache"
	"halfnote/internal/dbmysql"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---- In-memory fakes ----

// fakeStore implements Reviews, Likes and Comments the way the GORM
// repository does, including writing the activity row "transactionally"
// with the domain row.
type fakeStore struct {
	reviews    map[uint64]dbmysql.Review
	comments   map[uint64]dbmysql.Comment
	likes      map[[2]uint64]bool // (userID, reviewID)
	activities *fakeActivityRepo
	nextID     uint64
}

func newFakeStore(activities *fakeActivityRepo) *fakeStore {
	return &fakeStore{
		reviews:    map[uint64]dbmysql.Review{},
		comments:   map[uint64]dbmysql.Comment{},
		likes:      map[[2]uint64]bool{},
		activities: activities,
		nextID:     1,
	}
}

func (s *fakeStore) id() uint64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeStore) CreateWithActivity(ctx context.Context, review *dbmysql.Review) (*dbmysql.Activity, error) {
	review.ReviewID = s.id()
	review.CreatedAt = time.Now()
	s.reviews[review.ReviewID] = *review

	act := activity.NewReviewCreated(review.UserID, review.ReviewID)
	if err := s.activities.Create(ctx, act); err != nil {
		return nil, err
	}
	return act, nil
}

func (s *fakeStore) ByID(ctx context.Context, reviewID uint64) (*dbmysql.Review, error) {
	review, ok := s.reviews[reviewID]
	if !ok {
		return nil, ErrNotFound
	}
	rv := review
	return &rv, nil
}

func (s *fakeStore) Update(ctx context.Context, review *dbmysql.Review) error {
	s.reviews[review.ReviewID] = *review
	return nil
}

func (s *fakeStore) DeleteCascade(ctx context.Context, reviewID uint64) error {
	delete(s.reviews, reviewID)
	for id, c := range s.comments {
		if c.ReviewID == reviewID {
			delete(s.comments, id)
		}
	}
	for pair := range s.likes {
		if pair[1] == reviewID {
			delete(s.likes, pair)
		}
	}
	return s.activities.DeleteByReview(ctx, reviewID)
}

func (s *fakeStore) ExistsForUserAlbum(ctx context.Context, userID uint64, albumID string) (bool, error) {
	for _, r := range s.reviews {
		if r.UserID == userID && r.AlbumID == albumID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) PinnedCount(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	for _, r := range s.reviews {
		if r.UserID == userID && r.IsPinned {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) SetPinnedWithActivity(ctx context.Context, review *dbmysql.Review, pinned bool) (*dbmysql.Activity, error) {
	review.IsPinned = pinned
	s.reviews[review.ReviewID] = *review

	if !pinned {
		_, err := s.activities.DeleteMatching(ctx, activity.Match{
			Type: dbmysql.ActivityReviewPinned, ActorID: review.UserID, ReviewID: &review.ReviewID,
		})
		return nil, err
	}

	act := activity.NewReviewPinned(review.UserID, review.ReviewID)
	if err := s.activities.Create(ctx, act); err != nil {
		return nil, err
	}
	return act, nil
}

func (s *fakeStore) LikeWithActivity(ctx context.Context, userID uint64, review *dbmysql.Review) (*dbmysql.Activity, error) {
	pair := [2]uint64{userID, review.ReviewID}
	if s.likes[pair] {
		return nil, ErrAlreadyLiked
	}
	s.likes[pair] = true

	act := activity.NewReviewLiked(userID, review.ReviewID, review.UserID)
	if err := s.activities.Create(ctx, act); err != nil {
		return nil, err
	}
	return act, nil
}

func (s *fakeStore) UnlikeWithRetraction(ctx context.Context, userID, reviewID uint64) (bool, error) {
	pair := [2]uint64{userID, reviewID}
	if !s.likes[pair] {
		return false, nil
	}
	delete(s.likes, pair)
	_, err := s.activities.DeleteMatching(ctx, activity.Match{
		Type: dbmysql.ActivityReviewLiked, ActorID: userID, ReviewID: &reviewID,
	})
	return true, err
}

func (s *fakeStore) Exists(ctx context.Context, userID, reviewID uint64) (bool, error) {
	return s.likes[[2]uint64{userID, reviewID}], nil
}

func (s *fakeStore) Count(ctx context.Context, reviewID uint64) (int64, error) {
	var n int64
	for pair := range s.likes {
		if pair[1] == reviewID {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) CreateCommentWithActivity(ctx context.Context, comment *dbmysql.Comment, reviewOwnerID uint64) (*dbmysql.Activity, error) {
	comment.CommentID = s.id()
	comment.CreatedAt = time.Now()
	s.comments[comment.CommentID] = *comment

	act := activity.NewCommentCreated(comment.UserID, comment.ReviewID, comment.CommentID, reviewOwnerID)
	if err := s.activities.Create(ctx, act); err != nil {
		return nil, err
	}
	return act, nil
}

func (s *fakeStore) CommentByID(ctx context.Context, commentID uint64) (*dbmysql.Comment, error) {
	comment, ok := s.comments[commentID]
	if !ok {
		return nil, ErrCommentNotFound
	}
	c := comment
	return &c, nil
}

func (s *fakeStore) UpdateComment(ctx context.Context, comment *dbmysql.Comment) error {
	s.comments[comment.CommentID] = *comment
	return nil
}

func (s *fakeStore) DeleteCommentCascade(ctx context.Context, commentID uint64) error {
	delete(s.comments, commentID)
	return s.activities.DeleteByComment(ctx, commentID)
}

func (s *fakeStore) ListByReview(ctx context.Context, reviewID uint64) ([]dbmysql.Comment, error) {
	var out []dbmysql.Comment
	for id := uint64(1); id < s.nextID; id++ {
		if c, ok := s.comments[id]; ok && c.ReviewID == reviewID {
			out = append(out, c)
		}
	}
	return out, nil
}

var (
	_ Reviews  = (*fakeStore)(nil)
	_ Likes    = (*fakeStore)(nil)
	_ Comments = (*fakeStore)(nil)
)

// fakeActivityRepo is the in-memory activity log backing the recorder.
type fakeActivityRepo struct {
	rows []dbmysql.Activity
	next uint64
}

func newFakeActivityRepo() *fakeActivityRepo { return &fakeActivityRepo{next: 1} }

func (r *fakeActivityRepo) Create(ctx context.Context, act *dbmysql.Activity) error {
	act.ActivityID = r.next
	r.next++
	r.rows = append(r.rows, *act)
	return nil
}

func (r *fakeActivityRepo) DeleteMatching(ctx context.Context, m activity.Match) (int64, error) {
	var kept []dbmysql.Activity
	var removed int64
	for _, row := range r.rows {
		if row.Type == m.Type && row.UserID == m.ActorID &&
			(m.ReviewID == nil || (row.ReviewID != nil && *row.ReviewID == *m.ReviewID)) &&
			(m.CommentID == nil || (row.CommentID != nil && *row.CommentID == *m.CommentID)) &&
			(m.TargetID == nil || (row.TargetUserID != nil && *row.TargetUserID == *m.TargetID)) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return removed, nil
}

func (r *fakeActivityRepo) DeleteByReview(ctx context.Context, reviewID uint64) error {
	var kept []dbmysql.Activity
	for _, row := range r.rows {
		if row.ReviewID != nil && *row.ReviewID == reviewID {
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return nil
}

func (r *fakeActivityRepo) DeleteByComment(ctx context.Context, commentID uint64) error {
	var kept []dbmysql.Activity
	for _, row := range r.rows {
		if row.CommentID != nil && *row.CommentID == commentID {
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return nil
}

func (r *fakeActivityRepo) ListByActors(ctx context.Context, actorIDs []uint64, offset, limit int) ([]dbmysql.Activity, error) {
	return nil, nil
}

func (r *fakeActivityRepo) ListByActor(ctx context.Context, actorID uint64, excludeTypes []dbmysql.ActivityType, offset, limit int) ([]dbmysql.Activity, error) {
	return nil, nil
}

func (r *fakeActivityRepo) ListByTarget(ctx context.Context, targetID uint64, excludeTypes []dbmysql.ActivityType, offset, limit int) ([]dbmysql.Activity, error) {
	return nil, nil
}

var _ activity.ActivityRepository = (*fakeActivityRepo)(nil)

func (r *fakeActivityRepo) ofType(typ dbmysql.ActivityType) []dbmysql.Activity {
	var out []dbmysql.Activity
	for _, row := range r.rows {
		if row.Type == typ {
			out = append(out, row)
		}
	}
	return out
}

type fakeUsers struct {
	byID map[uint64]dbmysql.User
}

func (f *fakeUsers) UserByID(ctx context.Context, userID uint64) (*dbmysql.User, error) {
	u, ok := f.byID[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

type fakeFollowers struct{}

func (fakeFollowers) FollowerIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	return nil, nil
}

// ---- Fixtures ----

type fixture struct {
	svc   *Service
	store *fakeStore
	log   *fakeActivityRepo
	cache *cache.MemoryStore
}

func newFixture() *fixture {
	log := newFakeActivityRepo()
	store := newFakeStore(log)
	memcache := cache.NewMemoryStore()
	recorder := activity.NewRecorder(log, activity.NewInvalidator(memcache, fakeFollowers{}, zap.NewNop()))
	users := &fakeUsers{byID: map[uint64]dbmysql.User{
		1: {UserID: 1, Username: "alice"},
		2: {UserID: 2, Username: "bob"},
	}}

	return &fixture{
		svc:   NewService(store, store, store, users, recorder),
		store: store,
		log:   log,
		cache: memcache,
	}
}

func (f *fixture) createReview(t *testing.T, userID uint64, albumID string) *dbmysql.Review {
	t.Helper()
	review, err := f.svc.CreateReview(context.Background(), userID, CreateReviewInput{
		AlbumID:    albumID,
		AlbumTitle: "Blue",
		Rating:     8,
		Content:    "Still devastating.",
	})
	require.NoError(t, err)
	return review
}

// ---- Tests ----

func TestCreateReview(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the review and logs review_created", func(t *testing.T) {
		fx := newFixture()
		review := fx.createReview(t, 1, "mm-blue")

		require.NotZero(t, review.ReviewID)
		acts := fx.log.ofType(dbmysql.ActivityReviewCreated)
		require.Len(t, acts, 1)
		require.Equal(t, uint64(1), acts[0].UserID)
		require.Equal(t, review.ReviewID, *acts[0].ReviewID)
		require.Nil(t, acts[0].TargetUserID)
	})

	t.Run("rejects out-of-range ratings", func(t *testing.T) {
		fx := newFixture()
		for _, rating := range []int{0, -1, 11} {
			_, err := fx.svc.CreateReview(ctx, 1, CreateReviewInput{AlbumID: "mm-blue", Rating: rating})
			require.ErrorIs(t, err, ErrInvalidRating)
		}
		require.Empty(t, fx.log.rows)
	})

	t.Run("one review per user per album", func(t *testing.T) {
		fx := newFixture()
		fx.createReview(t, 1, "mm-blue")

		_, err := fx.svc.CreateReview(ctx, 1, CreateReviewInput{AlbumID: "mm-blue", Rating: 5})
		require.ErrorIs(t, err, ErrAlreadyReviewed)

		// a different user may review the same album
		_, err = fx.svc.CreateReview(ctx, 2, CreateReviewInput{AlbumID: "mm-blue", Rating: 5})
		require.NoError(t, err)
	})
}

func TestUpdateReview(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	review := fx.createReview(t, 1, "mm-blue")

	t.Run("owner can edit, no new activity appears", func(t *testing.T) {
		before := len(fx.log.rows)
		updated, err := fx.svc.UpdateReview(ctx, 1, review.ReviewID, 9, "Even better on relisten.", []string{"jazz", "folk"})
		require.NoError(t, err)
		require.Equal(t, 9, updated.Rating)
		require.Equal(t, "jazz,folk", updated.Genres)
		require.Len(t, fx.log.rows, before)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		_, err := fx.svc.UpdateReview(ctx, 2, review.ReviewID, 9, "mine now", nil)
		require.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("unknown review", func(t *testing.T) {
		_, err := fx.svc.UpdateReview(ctx, 1, 999, 9, "x", nil)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteReviewCascades(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	review := fx.createReview(t, 1, "mm-blue")

	_, _, err := fx.svc.ToggleLike(ctx, 2, review.ReviewID)
	require.NoError(t, err)
	_, err = fx.svc.AddComment(ctx, 2, review.ReviewID, "agreed")
	require.NoError(t, err)
	require.Len(t, fx.log.rows, 3)

	require.NoError(t, fx.svc.DeleteReview(ctx, 1, review.ReviewID))

	_, err = fx.svc.GetReview(ctx, review.ReviewID)
	require.ErrorIs(t, err, ErrNotFound)
	// every activity referencing the review is gone with it
	require.Empty(t, fx.log.rows)

	require.ErrorIs(t, fx.svc.DeleteReview(ctx, 1, review.ReviewID), ErrNotFound)
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	review := fx.createReview(t, 1, "mm-blue")

	liked, count, err := fx.svc.ToggleLike(ctx, 2, review.ReviewID)
	require.NoError(t, err)
	require.True(t, liked)
	require.Equal(t, int64(1), count)

	acts := fx.log.ofType(dbmysql.ActivityReviewLiked)
	require.Len(t, acts, 1)
	require.Equal(t, uint64(1), *acts[0].TargetUserID)

	// toggling again unlikes and retracts the activity
	liked, count, err = fx.svc.ToggleLike(ctx, 2, review.ReviewID)
	require.NoError(t, err)
	require.False(t, liked)
	require.Zero(t, count)
	require.Empty(t, fx.log.ofType(dbmysql.ActivityReviewLiked))
}

func TestToggleLikeOwnReview(t *testing.T) {
	fx := newFixture()
	review := fx.createReview(t, 1, "mm-blue")

	liked, _, err := fx.svc.ToggleLike(context.Background(), 1, review.ReviewID)
	require.NoError(t, err)
	require.True(t, liked)

	acts := fx.log.ofType(dbmysql.ActivityReviewLiked)
	require.Len(t, acts, 1)
	require.Nil(t, acts[0].TargetUserID, "self-like must not target the owner")
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	review := fx.createReview(t, 1, "mm-blue")

	t.Run("empty content rejected", func(t *testing.T) {
		_, err := fx.svc.AddComment(ctx, 2, review.ReviewID, "   ")
		require.ErrorIs(t, err, ErrEmptyComment)
	})

	t.Run("comment logs comment_created targeting the owner", func(t *testing.T) {
		comment, err := fx.svc.AddComment(ctx, 2, review.ReviewID, "what a record")
		require.NoError(t, err)
		require.NotZero(t, comment.CommentID)

		acts := fx.log.ofType(dbmysql.ActivityCommentCreated)
		require.Len(t, acts, 1)
		require.Equal(t, uint64(1), *acts[0].TargetUserID)
		require.Equal(t, comment.CommentID, *acts[0].CommentID)
	})

	t.Run("only the author can edit or delete", func(t *testing.T) {
		comment, err := fx.svc.AddComment(ctx, 2, review.ReviewID, "editable")
		require.NoError(t, err)

		_, err = fx.svc.UpdateComment(ctx, 1, comment.CommentID, "hijacked")
		require.ErrorIs(t, err, ErrNotOwner)
		require.ErrorIs(t, fx.svc.DeleteComment(ctx, 1, comment.CommentID), ErrNotOwner)

		updated, err := fx.svc.UpdateComment(ctx, 2, comment.CommentID, "edited")
		require.NoError(t, err)
		require.Equal(t, "edited", updated.Content)

		require.NoError(t, fx.svc.DeleteComment(ctx, 2, comment.CommentID))
		_, err = fx.svc.UpdateComment(ctx, 2, comment.CommentID, "gone")
		require.ErrorIs(t, err, ErrCommentNotFound)
	})

	t.Run("deleting a comment stales the owner's incoming feed", func(t *testing.T) {
		comment, err := fx.svc.AddComment(ctx, 2, review.ReviewID, "short lived")
		require.NoError(t, err)

		ownerIncoming := cache.FeedKey(1, cache.FeedKindIncoming)
		require.NoError(t, fx.cache.Set(ctx, ownerIncoming, []byte("page"), time.Minute))

		require.NoError(t, fx.svc.DeleteComment(ctx, 2, comment.CommentID))
		require.False(t, fx.cache.Has(ownerIncoming),
			"retracting a targeted comment activity must drop the owner's incoming key")
	})

	t.Run("deleting a comment retracts its activity", func(t *testing.T) {
		comment, err := fx.svc.AddComment(ctx, 2, review.ReviewID, "temporary")
		require.NoError(t, err)

		before := len(fx.log.ofType(dbmysql.ActivityCommentCreated))
		require.NoError(t, fx.svc.DeleteComment(ctx, 2, comment.CommentID))
		require.Len(t, fx.log.ofType(dbmysql.ActivityCommentCreated), before-1)
	})
}

func TestTogglePin(t *testing.T) {
	ctx := context.Background()

	t.Run("pin and unpin round trip", func(t *testing.T) {
		fx := newFixture()
		review := fx.createReview(t, 1, "mm-blue")

		pinned, err := fx.svc.TogglePin(ctx, 1, review.ReviewID)
		require.NoError(t, err)
		require.True(t, pinned)
		require.Len(t, fx.log.ofType(dbmysql.ActivityReviewPinned), 1)

		pinned, err = fx.svc.TogglePin(ctx, 1, review.ReviewID)
		require.NoError(t, err)
		require.False(t, pinned)
		require.Empty(t, fx.log.ofType(dbmysql.ActivityReviewPinned))
	})

	t.Run("only the owner may pin", func(t *testing.T) {
		fx := newFixture()
		review := fx.createReview(t, 1, "mm-blue")

		_, err := fx.svc.TogglePin(ctx, 2, review.ReviewID)
		require.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("pin cap is enforced", func(t *testing.T) {
		fx := newFixture()
		albums := []string{"a", "b", "c", "d", "e"}
		var last *dbmysql.Review
		for i, album := range albums {
			review := fx.createReview(t, 1, album)
			if i < dbmysql.MaxPinnedReviews {
				_, err := fx.svc.TogglePin(ctx, 1, review.ReviewID)
				require.NoError(t, err)
			}
			last = review
		}

		_, err := fx.svc.TogglePin(ctx, 1, last.ReviewID)
		require.ErrorIs(t, err, ErrPinLimit)

		// unpinning one frees a slot
		first := fx.log.ofType(dbmysql.ActivityReviewPinned)[0]
		_, err = fx.svc.TogglePin(ctx, 1, *first.ReviewID)
		require.NoError(t, err)
		_, err = fx.svc.TogglePin(ctx, 1, last.ReviewID)
		require.NoError(t, err)
	})
}
