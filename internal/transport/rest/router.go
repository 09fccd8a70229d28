package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/ingrid-backend/internal/transport/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Health        *HealthHandler
	Catalog       *CatalogHandler
	Subscriptions *SubscriptionHandler
	Access        *AccessHandler
	Admin         *AdminHandler
}

// RouterConfig carries the cross-cutting pieces of the HTTP stack.
type RouterConfig struct {
	Logger *slog.Logger
	// Auth guards everything under /api.
	Auth     middleware.Middleware
	Recovery middleware.Middleware
	Limiter  *middleware.RateLimiter
	// RateLimit is requests per minute per client; 0 disables it.
	RateLimit int
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID, middleware.Logger(cfg.Logger))
	if cfg.Recovery != nil {
		r.Use(cfg.Recovery)
	}

	r.Get("/live", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	r.Get("/health", h.Health.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(cfg.Auth)
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Limit(cfg.RateLimit))
		}

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/resolve", h.Catalog.Resolve)
			r.Get("/items/{id}", h.Catalog.GetItem)
			r.With(middleware.AdminOnly).Put("/items/{id}", h.Catalog.PutItem)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/subscriptions", h.Subscriptions.Create)
			r.Get("/subscriptions", h.Subscriptions.List)
			r.Delete("/subscriptions/{itemID}", h.Subscriptions.Delete)
			r.Post("/gate", h.Access.Gate)
			r.Post("/fulfillment", h.Access.Fulfill)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminOnly)
			r.Get("/approvals", h.Admin.ListApprovals)
			r.Get("/approvals/{userID}", h.Admin.GetApproval)
			r.Put("/approvals/{userID}", h.Admin.SetApproval)
			r.Get("/tasks", h.Admin.ListTasks)
			r.Post("/tasks/{name}/run", h.Admin.RunTask)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
