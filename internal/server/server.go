// Package server Lenscape
//
// Lenscape is a photo-sharing backend which assembles viewer-relative feeds
// over posts, likes, comments, follows, stories and notifications.
//
//     Schemes: https
//     BasePath: /v1
//     Version: 1.0.0
//
//     Produces:
//     - application/json
//     Consumes:
//     - application/json
//
// swagger:meta
package server

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"

	mm "github.com/lenscape/lenscape/internal/middleware"
	"github.com/lenscape/lenscape/internal/service"
)

type server struct {
	s service.Service
}

// SetupRouter setups handlers to chi router.
func SetupRouter(s service.Service, r chi.Router, timeout time.Duration) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.StripSlashes,
		cors.AllowAll().Handler,
		middleware.Recoverer,
		middleware.Timeout(timeout),
	)

	srv := server{
		s: s,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/feed/home", srv.getHomeFeed)
		r.Get("/feed/explore", srv.getExploreFeed)

		r.Post("/posts", srv.createPost)
		r.Get("/posts/{id}", srv.getPost)
		r.Delete("/posts/{id}", srv.deletePost)
		r.Post("/posts/{id}/likes", srv.likePost)
		r.Delete("/posts/{id}/likes", srv.unlikePost)
		r.Get("/posts/{id}/comments", srv.listComments)
		r.Post("/posts/{id}/comments", srv.addComment)

		r.Get("/users", mm.Cached(time.Minute, srv.searchUsers))
		r.Put("/users/{id}", srv.upsertUser)
		r.Patch("/users/{id}", srv.updateProfile)
		r.Get("/users/{id}", srv.getUserProfile)
		r.Get("/users/{id}/posts", srv.getProfileFeed)
		r.Get("/users/{id}/followers", srv.listFollowers)
		r.Post("/users/{id}/followers", srv.follow)
		r.Delete("/users/{id}/followers", srv.unfollow)
		r.Get("/users/{id}/following", srv.listFollowing)
		r.Get("/users/{id}/stories", srv.listUserStories)

		r.Get("/stories", srv.listActiveStories)
		r.Post("/stories", srv.createStory)

		r.Get("/notifications", srv.listNotifications)
		r.Post("/notifications/{id}/read", srv.markNotificationRead)
	})
}
