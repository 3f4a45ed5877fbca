package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"nightlog/internal/handler"
	"nightlog/internal/httputil"
	authmw "nightlog/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler     *handler.AuthHandler
	DreamHandler    *handler.DreamHandler
	UserHandler     *handler.UserHandler
	InsightsHandler *handler.InsightsHandler
	AnalysisHandler *handler.AnalysisHandler
	JWTSecret       string
	ClientURL       string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// The session cookie requires credentialed CORS, so the client origin
	// must be listed explicitly rather than wildcarded.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteSuccess(w, http.StatusOK, "ok", nil)
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes - no authentication required
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Protected routes - require authentication
		r.Group(func(r chi.Router) {
			r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Get("/auth/me", cfg.AuthHandler.Me)
			r.Post("/auth/refresh", cfg.AuthHandler.Refresh)

			r.Route("/dreams", func(r chi.Router) {
				r.Get("/", cfg.DreamHandler.List)
				r.Post("/", cfg.DreamHandler.Create)
				// Registered before /{id} so "trash" is never parsed as an ID
				r.Get("/trash", cfg.DreamHandler.ListTrash)
				r.Get("/{id}", cfg.DreamHandler.Get)
				r.Put("/{id}", cfg.DreamHandler.Update)
				r.Delete("/{id}", cfg.DreamHandler.SoftDelete)
				r.Post("/{id}/restore", cfg.DreamHandler.Restore)
				r.Delete("/{id}/permanent", cfg.DreamHandler.DeletePermanent)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", cfg.UserHandler.GetProfile)
				r.Put("/profile", cfg.UserHandler.UpdateProfile)
				r.Post("/avatar", cfg.UserHandler.UploadAvatar)
				r.Put("/password", cfg.UserHandler.ChangePassword)
				r.Delete("/account", cfg.UserHandler.DeleteAccount)
			})

			r.Route("/insights", func(r chi.Router) {
				r.Get("/stats", cfg.InsightsHandler.Stats)
				r.Get("/moods", cfg.InsightsHandler.Moods)
				r.Get("/symbols", cfg.InsightsHandler.Symbols)
			})

			r.Route("/analysis", func(r chi.Router) {
				r.Post("/dream/{id}", cfg.AnalysisHandler.AnalyzeDream)
				r.Post("/dream/{id}/reanalyze", cfg.AnalysisHandler.AnalyzeDream)
				r.Post("/analyze", cfg.AnalysisHandler.AnalyzeText)
			})
		})
	})

	return r
}
