package ui

import (
	"html/template"
	"net/http"
	"time"

	"github.com/jw6ventures/orgcal/internal/auth"
	"github.com/jw6ventures/orgcal/internal/calendar"
	"github.com/jw6ventures/orgcal/internal/config"
	"github.com/jw6ventures/orgcal/internal/store"
	"github.com/jw6ventures/orgcal/internal/subscription"
)

// Handler serves server-rendered HTML pages.
type Handler struct {
	cfg         *config.Config
	store       *store.Store
	authService *auth.Service
	subs        *subscription.Service
	templates   map[string]*template.Template

	// now is swapped out in tests.
	now func() time.Time
}

func NewHandler(cfg *config.Config, st *store.Store, authService *auth.Service, subs *subscription.Service) *Handler {
	return &Handler{
		cfg:         cfg,
		store:       st,
		authService: authService,
		subs:        subs,
		templates:   templates,
		now:         time.Now,
	}
}

// Dashboard shows subscription counts and the next few events across the
// admins the viewer follows.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	admins, err := h.store.Users.ListAdmins(r.Context())
	if err != nil {
		h.renderError(w, r, err, "failed to load admins")
		return
	}
	events, err := h.store.Events.ListAll(r.Context())
	if err != nil {
		h.renderError(w, r, err, "failed to load events")
		return
	}
	pending, err := h.subs.PendingFrom(r.Context(), user.ID)
	if err != nil {
		h.renderError(w, r, err, "failed to load pending requests")
		return
	}

	registry := calendar.BuildRegistry(admins, calendar.SubscribedOnly, user.SubscribedTo)
	upcoming := calendar.Upcoming(events, registry.ActiveSet(), h.now(), calendar.DefaultUpcomingLimit)

	data := h.withFlash(r, map[string]any{
		"Title":             "Oversikt",
		"User":              user,
		"SubscriptionCount": len(user.SubscribedTo),
		"PendingCount":      len(pending),
		"Upcoming":          h.eventViews(r, upcoming, registry),
	})
	h.render(w, r, "dashboard.html", data)
}

// Logout clears the session and returns to the login page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
