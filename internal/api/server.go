package api

import (
	"net/http"

	"halfnote/internal/common"
	"halfnote/internal/feed"
	"halfnote/internal/profile"
	"halfnote/internal/review"
	"halfnote/internal/social"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server is the thin HTTP surface over the feed core. Handlers only parse,
// delegate and serialize; all semantics live in the services.
type Server struct {
	feeds    *feed.Service
	reviews  *review.Service
	socials  *social.Service
	profiles *profile.Service
	logger   *zap.Logger
}

func NewServer(
	feeds *feed.Service,
	reviews *review.Service,
	socials *social.Service,
	profiles *profile.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		feeds:    feeds,
		reviews:  reviews,
		socials:  socials,
		profiles: profiles,
		logger:   logger,
	}
}

// Router wires all routes. Profile reads are public; feeds and every
// mutation require an authenticated caller.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.health).Methods("GET")

	public := router.PathPrefix("/api").Subrouter()
	public.HandleFunc("/users/{username}", s.getProfile).Methods("GET")
	public.HandleFunc("/users/{username}/reviews", s.getUserReviews).Methods("GET")

	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(common.AuthMiddleware)
	authed.HandleFunc("/activity/feed", s.getFeed).Methods("GET")
	authed.HandleFunc("/reviews", s.createReview).Methods("POST")
	authed.HandleFunc("/reviews/{id:[0-9]+}", s.getReview).Methods("GET")
	authed.HandleFunc("/reviews/{id:[0-9]+}", s.updateReview).Methods("PUT")
	authed.HandleFunc("/reviews/{id:[0-9]+}", s.deleteReview).Methods("DELETE")
	authed.HandleFunc("/reviews/{id:[0-9]+}/like", s.toggleLike).Methods("POST")
	authed.HandleFunc("/reviews/{id:[0-9]+}/pin", s.togglePin).Methods("POST")
	authed.HandleFunc("/reviews/{id:[0-9]+}/comments", s.listComments).Methods("GET")
	authed.HandleFunc("/reviews/{id:[0-9]+}/comments", s.addComment).Methods("POST")
	authed.HandleFunc("/comments/{id:[0-9]+}", s.updateComment).Methods("PUT")
	authed.HandleFunc("/comments/{id:[0-9]+}", s.deleteComment).Methods("DELETE")
	authed.HandleFunc("/users/{username}/follow", s.follow).Methods("POST")
	authed.HandleFunc("/users/{username}/follow", s.unfollow).Methods("DELETE")

	return router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
