package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"halfnote/internal/common"
	"halfnote/internal/review"
	"halfnote/internal/social"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain sentinels to HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, review.ErrNotFound),
		errors.Is(err, review.ErrCommentNotFound),
		errors.Is(err, social.ErrUserNotFound),
		errors.Is(err, social.ErrFollowNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, review.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, review.ErrAlreadyReviewed),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, review.ErrEmptyComment),
		errors.Is(err, review.ErrPinLimit),
		errors.Is(err, social.ErrSelfFollow),
		errors.Is(err, social.ErrAlreadyFollowing):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// --------- FEED ---------

func (s *Server) getFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	kind := r.URL.Query().Get("type")
	if kind == "" {
		kind = "friends"
	}
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)

	page, err := s.feeds.GetFeed(r.Context(), userID, kind, offset, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// --------- REVIEWS ---------

type reviewRequest struct {
	AlbumID     string   `json:"album_id"`
	AlbumTitle  string   `json:"album_title"`
	AlbumArtist string   `json:"album_artist"`
	AlbumYear   int      `json:"album_year"`
	CoverURL    string   `json:"cover_url"`
	Rating      int      `json:"rating"`
	Content     string   `json:"content"`
	Genres      []string `json:"genres"`
}

func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFromContext(r.Context())

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.reviews.CreateReview(r.Context(), userID, review.CreateReviewInput{
		AlbumID:     req.AlbumID,
		AlbumTitle:  req.AlbumTitle,
		AlbumArtist: req.AlbumArtist,
		AlbumYear:   req.AlbumYear,
		CoverURL:    req.CoverURL,
		Rating:      req.Rating,
		Content:     req.Content,
		Genres:      req.Genres,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	rv, err := s.reviews.GetReview(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (s *Server) updateReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.reviews.UpdateReview(r.Context(), userID, id, req.Rating, req.Content, req.Genres)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	if err := s.reviews.DeleteReview(r.Context(), userID, id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "review deleted"})
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	liked, count, err := s.reviews.ToggleLike(r.Context(), userID, id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	action := "unliked"
	if liked {
		action = "liked"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"action":     action,
		"like_count": count,
	})
}

func (s *Server) togglePin(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	pinned, err := s.reviews.TogglePin(r.Context(), userID, id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"pinned": pinned})
}

// --------- COMMENTS ---------

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	comments, err := s.reviews.ListComments(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := s.reviews.AddComment(r.Context(), userID, id, req.Content)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) updateComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := s.reviews.UpdateComment(r.Context(), userID, id, req.Content)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := s.reviews.DeleteComment(r.Context(), userID, id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

// --------- SOCIAL ---------

func (s *Server) follow(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFromContext(r.Context())
	username := mux.Vars(r)["username"]

	counts, err := s.socials.Follow(r.Context(), userID, username)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"action":          "followed",
		"target_user":     username,
		"follower_count":  counts.FollowerCount,
		"following_count": counts.FollowingCount,
	})
}

func (s *Server) unfollow(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFromContext(r.Context())
	username := mux.Vars(r)["username"]

	counts, err := s.socials.Unfollow(r.Context(), userID, username)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"action":          "unfollowed",
		"target_user":     username,
		"follower_count":  counts.FollowerCount,
		"following_count": counts.FollowingCount,
	})
}

// --------- PROFILE ---------

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	view, err := s.profiles.GetProfile(r.Context(), username)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getUserReviews(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 20)

	page, err := s.profiles.ListUserReviews(r.Context(), username, offset, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
