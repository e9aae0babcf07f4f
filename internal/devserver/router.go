package devserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"ministagram/internal/httputil"
)

// Handler builds the chi router with every API route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes
	r.Post("/auth/login", s.login)
	r.Post("/auth/signup", s.signup)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/auth/me", s.me)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.listUsers)
			r.Get("/followers", s.myFollowers)
			r.Get("/following", s.myFollowing)
			r.Get("/follow-requests", s.followRequests)
			r.Patch("/follow/{user}/{action}", s.respondFollowRequest)
			r.Get("/{user}", s.getUser)
			r.Put("/{user}", s.updateUser)
			r.Post("/{user}/follow", s.follow)
			r.Delete("/{user}/unfollow", s.unfollow)
			r.Get("/{user}/followers", s.followersOf)
			r.Get("/{user}/following", s.followingOf)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", s.myPosts)
			r.Post("/", s.createPost)
			r.Delete("/", s.deleteAllPosts)
			r.Get("/user/{username}", s.postsByUser)
			r.Delete("/{id}", s.deletePost)
			r.Post("/{id}/like", s.like)
			r.Delete("/{id}/unlike", s.unlike)
			r.Get("/{id}/comments", s.listComments)
			r.Post("/{id}/comments", s.addComment)
		})
		r.Delete("/comments/{id}", s.deleteComment)

		r.Get("/feed", s.feed)

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", s.listChats)
			r.Get("/{chat}/messages", s.messages)
			r.Post("/{chat}/messages", s.sendMessage)
			r.Patch("/{chat}/seen", s.markSeen)
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
