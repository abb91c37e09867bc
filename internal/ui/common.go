package ui

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jw6ventures/orgcal/internal/calendar"
	"github.com/jw6ventures/orgcal/internal/http/csrf"
	"github.com/jw6ventures/orgcal/internal/http/errors"
	"github.com/jw6ventures/orgcal/internal/store"
)

// withFlash adds flash messages and CSRF token to template data.
func (h *Handler) withFlash(r *http.Request, data map[string]any) map[string]any {
	q := r.URL.Query()
	if status := q.Get("status"); status != "" {
		data["FlashMessage"] = status
	}
	if err := q.Get("error"); err != "" {
		data["FlashError"] = err
	}
	if csrfToken := csrf.TokenFromContext(r.Context()); csrfToken != "" {
		data["CSRFToken"] = csrfToken
	}
	return data
}

// redirect redirects to a path with query parameters.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, path string, params map[string]string) {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	location := path
	if encoded := q.Encode(); encoded != "" {
		location += "?" + encoded
	}
	http.Redirect(w, r, location, http.StatusFound)
}

// render executes a template and writes the response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	tmpl, ok := h.templates[name]
	if !ok {
		errors.InternalError(w, r, fmt.Errorf("template not found"), fmt.Sprintf("template %q not found", name))
		return
	}

	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		errors.InternalError(w, r, err, fmt.Sprintf("template render error for %q", name))
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error, message string) {
	errors.InternalError(w, r, err, message)
}

// parseMonth reads y and m query parameters as a zero-based month, falling
// back to the current month.
func (h *Handler) parseMonth(r *http.Request) (int, int) {
	now := h.now().UTC()
	year := now.Year()
	month := int(now.Month()) - 1

	q := r.URL.Query()
	if y := q.Get("y"); y != "" {
		if parsed, err := strconv.Atoi(y); err == nil {
			year = parsed
		}
	}
	if m := q.Get("m"); m != "" {
		if parsed, err := strconv.Atoi(m); err == nil {
			month = parsed
		}
	}
	return calendar.Norm(year, month)
}

// offParams reads the admins the viewer has toggled off.
func offParams(r *http.Request) []string {
	return r.URL.Query()["off"]
}

// eventView is the template-facing shape of an event, carrying the color of
// the admin that created it.
type eventView struct {
	ID        string
	Title     string
	Location  string
	StartsAt  time.Time
	AdminName string
	Color     string
}

func (h *Handler) eventViews(r *http.Request, events []store.Event, registry *calendar.Registry) []eventView {
	views := make([]eventView, 0, len(events))
	for _, ev := range events {
		view := eventView{
			ID:       ev.ID,
			Title:    ev.Title,
			Location: ev.Location,
			StartsAt: ev.StartsAt,
		}
		if entry, ok := registry.Lookup(ev.CreatedBy); ok {
			view.AdminName = entry.DisplayName
			view.Color = entry.Color
		}
		views = append(views, view)
	}
	return views
}
