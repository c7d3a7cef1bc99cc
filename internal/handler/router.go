package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mfai/ambassador/api/internal/middleware"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds everything NewRouter mounts
type RouterConfig struct {
	Auth      *AuthHandler
	Missions  *MissionHandler
	Resources *ResourceHandler
	Admin     *AdminHandler
	DB        Pinger

	Tokens      middleware.TokenValidator
	Ambassadors middleware.AmbassadorLookup
	RateLimiter *middleware.RateLimiter
	Idempotency *middleware.IdempotencyStore

	AllowedOrigins []string
}

// NewRouter builds the HTTP routing tree. The account routes are mounted at
// both /api/auth and /api/ambassadors.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.Recovery,
		middleware.Logger,
		middleware.Metrics,
		middleware.CORS(cfg.AllowedOrigins),
		middleware.Compress,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, model.NewNotFoundError("route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, model.NewMethodNotAllowedError(r.Method, r.URL.Path))
	})

	r.Get("/health", Health(cfg.DB))
	r.Handle("/metrics", promhttp.Handler())

	authenticated := chi.Chain(
		middleware.Auth(cfg.Tokens, cfg.Ambassadors),
		middleware.RateLimit(cfg.RateLimiter),
		middleware.Idempotency(cfg.Idempotency),
	)

	r.Route("/api", func(r chi.Router) {
		accountRoutes := func(r chi.Router) {
			// Anonymous callers are rate limited by IP
			r.With(middleware.RateLimit(cfg.RateLimiter)).Post("/register", cfg.Auth.Register)
			r.With(middleware.RateLimit(cfg.RateLimiter)).Post("/login", cfg.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(authenticated...)
				r.Get("/profile", cfg.Auth.Profile)
				r.Put("/profile", cfg.Auth.UpdateProfile)
				r.Get("/statistics", cfg.Auth.Statistics)
			})
		}
		r.Route("/auth", accountRoutes)
		r.Route("/ambassadors", accountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(authenticated...)

			r.Route("/missions", func(r chi.Router) {
				r.Get("/available", cfg.Missions.Available)
				r.Get("/history", cfg.Missions.History)
				r.Get("/{id}", cfg.Missions.Get)
				r.Post("/{id}/complete", cfg.Missions.Complete)

				r.With(middleware.AdminOnly).Post("/", cfg.Missions.Create)
				r.With(middleware.AdminOnly).Put("/{id}", cfg.Missions.Update)
				r.With(middleware.AdminOnly).Delete("/{id}", cfg.Missions.Delete)
			})

			r.Route("/ressources", func(r chi.Router) {
				r.Get("/", cfg.Resources.List)
				r.Get("/{id}", cfg.Resources.Get)
				r.Post("/{id}/complete", cfg.Resources.Complete)

				r.With(middleware.AdminOnly).Post("/", cfg.Resources.Create)
				r.With(middleware.AdminOnly).Put("/{id}", cfg.Resources.Update)
				r.With(middleware.AdminOnly).Delete("/{id}", cfg.Resources.Delete)
			})

			r.Route("/admin/ambassadors/{id}", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/level", cfg.Admin.Promote)
				r.Post("/points", cfg.Admin.CreditPoints)
				r.Post("/badges", cfg.Admin.AwardBadge)
				r.Post("/activate", cfg.Admin.Activate)
				r.Post("/deactivate", cfg.Admin.Deactivate)
			})
		})
	})

	return r
}
