package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pixelshelf/internal/handler"
	"pixelshelf/internal/httputil"
	authmw "pixelshelf/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	FollowHandler       *handler.FollowHandler
	NotificationHandler *handler.NotificationHandler
	CommentHandler      *handler.CommentHandler
	AssetHandler        *handler.AssetHandler
	ProjectHandler      *handler.ProjectHandler
	FeedHandler         *handler.FeedHandler
	SearchHandler       *handler.SearchHandler
	PaymentHandler      *handler.PaymentHandler
	JWTSecret           string
}

// NewRouter creates and configures a Chi router with all route groups.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		optionalAuth := authmw.OptionalAuthMiddleware(cfg.JWTSecret)

		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/refresh", cfg.AuthHandler.Refresh)
			r.Post("/logout", cfg.AuthHandler.Logout)
		})

		// Billing webhook authenticates by signature, not session
		r.Post("/payments/webhook", cfg.PaymentHandler.Webhook)

		// Public reads with optional viewer enrichment
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Get("/users/{username}", cfg.UserHandler.GetProfile)
			r.Get("/users/{username}/followers", cfg.UserHandler.GetFollowers)
			r.Get("/users/{username}/following", cfg.UserHandler.GetFollowing)

			r.Get("/assets", cfg.AssetHandler.List)
			r.Get("/assets/{id}", cfg.AssetHandler.Get)
			r.Get("/assets/{id}/comments", cfg.CommentHandler.List)

			r.Get("/projects", cfg.ProjectHandler.List)
			r.Get("/projects/{id}", cfg.ProjectHandler.Get)

			r.Get("/search", cfg.SearchHandler.Search)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

			r.Get("/me", cfg.AuthHandler.Me)
			r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

			r.Patch("/users/profile", cfg.UserHandler.UpdateProfile)
			r.Put("/users/avatar", cfg.UserHandler.UpdateAvatar)

			r.Post("/follow", cfg.FollowHandler.Follow)
			r.Delete("/follow", cfg.FollowHandler.Unfollow)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", cfg.NotificationHandler.List)
				r.Patch("/", cfg.NotificationHandler.Mark)
				r.Get("/unread-count", cfg.NotificationHandler.UnreadCount)
				r.Get("/stream", cfg.NotificationHandler.Stream)
			})

			r.Post("/assets", cfg.AssetHandler.Create)
			r.Patch("/assets/{id}", cfg.AssetHandler.Update)
			r.Delete("/assets/{id}", cfg.AssetHandler.Delete)
			r.Post("/assets/{id}/like", cfg.AssetHandler.Like)
			r.Delete("/assets/{id}/like", cfg.AssetHandler.Unlike)
			r.Post("/assets/{id}/comments", cfg.CommentHandler.Create)

			r.Patch("/comments/{id}", cfg.CommentHandler.Update)
			r.Delete("/comments/{id}", cfg.CommentHandler.Delete)

			r.Post("/projects", cfg.ProjectHandler.Create)
			r.Patch("/projects/{id}", cfg.ProjectHandler.Update)
			r.Delete("/projects/{id}", cfg.ProjectHandler.Delete)

			r.Get("/feed", cfg.FeedHandler.GetFeed)

			r.Route("/payments", func(r chi.Router) {
				r.Post("/create-checkout", cfg.PaymentHandler.CreateCheckout)
				r.Post("/create-portal", cfg.PaymentHandler.CreatePortal)
				r.Get("/subscription", cfg.PaymentHandler.GetSubscription)
			})
		})
	})

	return r
}
