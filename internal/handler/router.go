package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clinic-api/internal/metrics"
	"clinic-api/internal/middleware"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps collects what NewRouter wires together.
type RouterDeps struct {
	Handler     *Handler
	Gate        middleware.CallerIdentifier
	Limiter     *middleware.RateLimiter
	Store       Pinger
	Logger      *slog.Logger
	HTTPMetrics metrics.HTTPRecorder
	Metrics     http.Handler
}

// NewRouter builds the full route table.
//
// Middleware order: Recover → Logging → (Limit on login | Session on protected routes).
func NewRouter(d RouterDeps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	h := d.Handler

	r := chi.NewRouter()
	r.Use(middleware.Recover)
	r.Use(middleware.Logging(d.Logger, d.HTTPMetrics))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Store != nil {
			if err := d.Store.Ping(r.Context()); err != nil {
				slog.ErrorContext(r.Context(), "health check", slog.String("error", err.Error()))
				middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/auth", func(r chi.Router) {
		if d.Limiter != nil {
			r.With(middleware.Limit(d.Limiter)).Post("/login", h.Login)
		} else {
			r.Post("/login", h.Login)
		}
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(d.Gate))
			r.Get("/me", h.Me)
			r.Put("/change-password", h.ChangePassword)
		})
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Use(middleware.Session(d.Gate))
		r.Get("/", h.ListAppointments)
		r.Post("/", h.CreateAppointment)
		r.Put("/{id}", h.UpdateAppointment)
		r.Delete("/{id}", h.CancelAppointment)
	})

	return r
}
