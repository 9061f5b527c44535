package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bitsbybeier/backend/app"
	"github.com/bitsbybeier/backend/internal/observability"
	"github.com/bitsbybeier/backend/middleware"
	"github.com/bitsbybeier/backend/models"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.PropagateRequestID)
	if deps.Metrics != nil {
		r.Use(middleware.Instrument(deps.Metrics))
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Probes
	r.Get("/readyz", deps.HealthHandler.HandleReady)

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", observability.Handler(deps.Registry))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", deps.HealthHandler.HandleHealth)

		// Login exchange and current-user lookup
		r.Route("/auth", func(r chi.Router) {
			r.Post("/google", deps.AuthHandler.HandleGoogleLogin)
			// Provider-agnostic alias used by older clients
			r.Post("/login", deps.AuthHandler.HandleGoogleLogin)

			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.RequireAuth)
				r.Get("/user", deps.AuthHandler.HandleCurrentUser)
			})
		})

		// Public content, published items only
		r.Route("/content", func(r chi.Router) {
			r.Get("/", deps.ContentHandler.HandleListPublished)
			r.Get("/{id}", deps.ContentHandler.HandleGetPublished)
		})

		// CMS, admin role required
		r.Route("/cms/content", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireRole(models.RoleAdmin))
			r.Get("/", deps.ContentHandler.HandleListAll)
			r.Post("/", deps.ContentHandler.HandleCreate)
			r.Get("/{id}", deps.ContentHandler.HandleGet)
			r.Put("/{id}", deps.ContentHandler.HandleUpdate)
			r.Patch("/{id}", deps.ContentHandler.HandleUpdate)
			r.Delete("/{id}", deps.ContentHandler.HandleDelete)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
