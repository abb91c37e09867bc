package ui

import (
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/jw6ventures/orgcal/internal/auth"
	"github.com/jw6ventures/orgcal/internal/calendar"
)

const defaultEventDuration = time.Hour

// CalendarFeed exports the viewer's subscribed events as an iCalendar feed
// for external calendar clients.
func (h *Handler) CalendarFeed(w http.ResponseWriter, r *http.Request) {
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

	registry := calendar.BuildRegistry(admins, calendar.SubscribedOnly, user.SubscribedTo)
	active := registry.ActiveSet()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//OrgCal//NO")

	now := h.now()
	for _, ev := range events {
		if ev.Malformed || !active[ev.CreatedBy] {
			continue
		}
		entry := cal.AddEvent(ev.ID)
		entry.SetDtStampTime(now)
		entry.SetStartAt(ev.StartsAt)
		entry.SetEndAt(ev.StartsAt.Add(defaultEventDuration))
		entry.SetSummary(ev.Title)
		if ev.Location != "" {
			entry.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			entry.SetDescription(ev.Description)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="orgcal.ics"`)
	_, _ = w.Write([]byte(cal.Serialize()))
}
