package ui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jw6ventures/orgcal/internal/auth"
	"github.com/jw6ventures/orgcal/internal/store"
)

// NewEventForm shows the event creation form.
func (h *Handler) NewEventForm(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	data := h.withFlash(r, map[string]any{
		"Title": "Nytt arrangement",
		"User":  user,
	})
	h.render(w, r, "event_new.html", data)
}

// CreateEvent stores a new event for the signed-in admin. The datetime is
// validated up front and stored in canonical form.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	datetime := strings.TrimSpace(r.FormValue("datetime"))
	if title == "" || datetime == "" {
		h.redirect(w, r, "/events/new", map[string]string{"error": "missing_fields"})
		return
	}

	startsAt, err := store.ParseInstant(datetime)
	if err != nil {
		h.redirect(w, r, "/events/new", map[string]string{"error": "invalid_datetime"})
		return
	}

	_, err = h.store.Events.Create(r.Context(), store.Event{
		Title:       title,
		RawDatetime: store.FormatInstant(startsAt),
		Location:    strings.TrimSpace(r.FormValue("location")),
		Description: strings.TrimSpace(r.FormValue("description")),
		CreatedBy:   user.ID,
	})
	if err != nil {
		h.renderError(w, r, err, "failed to create event")
		return
	}

	h.redirect(w, r, "/my-calendar", map[string]string{"status": "created"})
}

// DeleteEvent removes one of the signed-in admin's own events.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := h.store.Events.Delete(r.Context(), user.ID, id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.renderError(w, r, err, "failed to delete event")
		return
	}

	h.redirect(w, r, "/my-calendar", map[string]string{"status": "deleted"})
}
