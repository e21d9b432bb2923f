package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yvoloshyn/contactsgo/pkg/health"
	"github.com/yvoloshyn/contactsgo/pkg/middleware"

	"github.com/yvoloshyn/contactsgo/internal/domain"
	"github.com/yvoloshyn/contactsgo/internal/service"
)

// NewRouter creates a chi router with all contacts service routes registered.
func NewRouter(
	sessionService *service.SessionService,
	contactService *service.ContactService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing("contacts"))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("contacts"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(sessionService, logger)
	userHandler := NewUserHandler(sessionService, logger)
	contactHandler := NewContactHandler(contactService, logger)

	// Session endpoints (public)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Get("/confirm/{token}", authHandler.Confirm)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/request-confirmation", authHandler.RequestConfirmation)
		})
	})

	// Profile endpoints (auth required)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(Authenticate(sessionService))

		r.Get("/me", userHandler.Me)
		r.Patch("/me/avatar", userHandler.UpdateAvatar)
	})

	// Admin endpoints
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(Authenticate(sessionService))
		r.Use(RequireRole(domain.RoleAdmin))

		r.Get("/users", userHandler.AdminListUsers)
	})

	// Contact-book endpoints (auth required, any role)
	r.Route("/api/v1/contacts", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(Authenticate(sessionService))

		r.Post("/", contactHandler.Create)
		r.Get("/", contactHandler.List)
		r.Get("/search", contactHandler.Search)
		r.Get("/birthdays", contactHandler.Birthdays)
		r.Get("/{id}", contactHandler.Get)
		r.Put("/{id}", contactHandler.Update)
		r.Patch("/{id}/favorite", contactHandler.SetFavorite)
		r.Delete("/{id}", contactHandler.Delete)
	})

	return r
}
