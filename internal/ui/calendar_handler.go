package ui

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/jw6ventures/orgcal/internal/auth"
	"github.com/jw6ventures/orgcal/internal/calendar"
	"github.com/jw6ventures/orgcal/internal/store"
)

// calendarDay is one rendered grid cell.
type calendarDay struct {
	Day    int
	Events []eventView
}

// Calendar renders the merged month view across all admins. Admins toggled
// off via repeated off query parameters are hidden for this request only.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	year, month := h.parseMonth(r)

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

	registry := calendar.BuildRegistry(admins, calendar.AllAdmins, user.SubscribedTo)
	for _, id := range offParams(r) {
		registry.SetActive(id, false)
	}
	active := registry.ActiveSet()

	buckets := calendar.BucketByDay(year, month, events, active)
	weeks := calendar.MonthGrid(year, month)

	grid := make([][]calendarDay, 0, len(weeks))
	for _, week := range weeks {
		row := make([]calendarDay, 0, 7)
		for _, day := range week {
			cell := calendarDay{Day: day}
			if day > 0 {
				cell.Events = h.eventViews(r, buckets[day], registry)
			}
			row = append(row, cell)
		}
		grid = append(grid, row)
	}

	prevYear, prevMonth := calendar.Norm(year, month-1)
	nextYear, nextMonth := calendar.Norm(year, month+1)

	data := h.withFlash(r, map[string]any{
		"Title":    calendar.Title(year, month),
		"User":     user,
		"DayNames": calendar.DayNames,
		"Weeks":    grid,
		"Admins":   h.filterViews(registry, year, month, offParams(r)),
		"Upcoming": h.eventViews(r, calendar.Upcoming(events, active, h.now(), calendar.DefaultUpcomingLimit), registry),
		"PrevURL":  monthURL(prevYear, prevMonth, offParams(r)),
		"NextURL":  monthURL(nextYear, nextMonth, offParams(r)),
	})
	h.render(w, r, "calendar.html", data)
}

// AdminCalendar shows a month view of only the signed-in admin's own events,
// with a management list for deleting them underneath.
func (h *Handler) AdminCalendar(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	year, month := h.parseMonth(r)

	events, err := h.store.Events.ListByCreator(r.Context(), user.ID)
	if err != nil {
		h.renderError(w, r, err, "failed to load events")
		return
	}

	registry := calendar.BuildRegistry([]store.User{*user}, calendar.AllAdmins, nil)
	active := registry.ActiveSet()

	buckets := calendar.BucketByDay(year, month, events, active)
	weeks := calendar.MonthGrid(year, month)

	grid := make([][]calendarDay, 0, len(weeks))
	for _, week := range weeks {
		row := make([]calendarDay, 0, 7)
		for _, day := range week {
			cell := calendarDay{Day: day}
			if day > 0 {
				cell.Events = h.eventViews(r, buckets[day], registry)
			}
			row = append(row, cell)
		}
		grid = append(grid, row)
	}

	views := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		views = append(views, map[string]any{
			"ID":        ev.ID,
			"Title":     ev.Title,
			"Location":  ev.Location,
			"StartsAt":  ev.StartsAt,
			"Malformed": ev.Malformed,
			"Raw":       ev.RawDatetime,
		})
	}

	prevYear, prevMonth := calendar.Norm(year, month-1)
	nextYear, nextMonth := calendar.Norm(year, month+1)

	data := h.withFlash(r, map[string]any{
		"Title":      "Min kalender",
		"MonthTitle": calendar.Title(year, month),
		"User":       user,
		"DayNames":   calendar.DayNames,
		"Weeks":      grid,
		"Events":     views,
		"PrevURL":    adminMonthURL(prevYear, prevMonth),
		"NextURL":    adminMonthURL(nextYear, nextMonth),
	})
	h.render(w, r, "admin_calendar.html", data)
}

// filterView is one admin row in the filter bar, with the URL that toggles
// its visibility.
type filterView struct {
	ID          string
	DisplayName string
	Color       string
	Active      bool
	ToggleURL   string
}

func (h *Handler) filterViews(registry *calendar.Registry, year, month int, off []string) []filterView {
	entries := registry.Entries()
	views := make([]filterView, 0, len(entries))
	for _, e := range entries {
		toggled := make([]string, 0, len(off)+1)
		for _, id := range off {
			if id != e.ID {
				toggled = append(toggled, id)
			}
		}
		if e.Active {
			toggled = append(toggled, e.ID)
		}
		views = append(views, filterView{
			ID:          e.ID,
			DisplayName: e.DisplayName,
			Color:       e.Color,
			Active:      e.Active,
			ToggleURL:   monthURL(year, month, toggled),
		})
	}
	return views
}

func monthURL(year, month int, off []string) string {
	q := url.Values{}
	q.Set("y", strconv.Itoa(year))
	q.Set("m", strconv.Itoa(month))
	for _, id := range off {
		q.Add("off", id)
	}
	return "/calendar?" + q.Encode()
}

func adminMonthURL(year, month int) string {
	q := url.Values{}
	q.Set("y", strconv.Itoa(year))
	q.Set("m", strconv.Itoa(month))
	return "/my-calendar?" + q.Encode()
}
