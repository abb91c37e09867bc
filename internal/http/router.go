package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/jw6ventures/orgcal/internal/auth"
	"github.com/jw6ventures/orgcal/internal/config"
	"github.com/jw6ventures/orgcal/internal/http/csrf"
	"github.com/jw6ventures/orgcal/internal/http/ratelimit"
	"github.com/jw6ventures/orgcal/internal/metrics"
	"github.com/jw6ventures/orgcal/internal/store"
	"github.com/jw6ventures/orgcal/internal/subscription"
	"github.com/jw6ventures/orgcal/internal/ui"
)

// NewRouter wires all HTTP routes.
func NewRouter(cfg *config.Config, st *store.Store, authService *auth.Service, subs *subscription.Service) http.Handler {
	r := chi.NewRouter()

	// Login endpoints: 5 requests per second, burst of 10
	loginRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(5), 10, 5*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := st.HealthCheck(ctx); err != nil {
			http.Error(w, "unready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	uiHandler := ui.NewHandler(cfg, st, authService, subs)

	r.Group(func(r chi.Router) {
		r.Use(loginRateLimiter.Middleware())
		r.With(csrf.Middleware(cfg)).Get("/login", uiHandler.LoginForm)
		r.With(csrf.Middleware(cfg)).Post("/login", uiHandler.Login)
		r.Get("/auth/sso", authService.BeginOAuth)
		r.Get("/auth/callback", authService.HandleOAuthCallback)
	})

	r.With(authService.RequireSession, csrf.Middleware(cfg)).Post("/logout", uiHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(authService.RequireSession)
		r.Use(csrf.Middleware(cfg))

		r.Get("/", uiHandler.Dashboard)
		r.Get("/calendar", uiHandler.Calendar)
		r.Get("/calendar.ics", uiHandler.CalendarFeed)

		r.Get("/subscriptions", uiHandler.Subscriptions)
		r.Post("/subscriptions", uiHandler.RequestSubscription)
		r.Post("/subscriptions/{adminID}/unsubscribe", uiHandler.Unsubscribe)
		r.Get("/subscriptions/stream", uiHandler.PendingStream)

		r.Group(func(r chi.Router) {
			r.Use(authService.RequireAdmin)

			r.Get("/my-calendar", uiHandler.AdminCalendar)
			r.Get("/events/new", uiHandler.NewEventForm)
			r.Post("/events", uiHandler.CreateEvent)
			r.Post("/events/{id}/delete", uiHandler.DeleteEvent)

			r.Get("/requests", uiHandler.RequestInbox)
			r.Post("/requests/{id}/accept", uiHandler.AcceptRequest)
			r.Post("/requests/{id}/deny", uiHandler.DenyRequest)
		})
	})

	return r
}
