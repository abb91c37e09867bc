package calendar

import (
	"sort"
	"time"

	"github.com/jw6ventures/orgcal/internal/store"
)

// DefaultUpcomingLimit is the size of the "next events" summary.
const DefaultUpcomingLimit = 3

// EventsOnDay returns the visible events whose normalized instant falls on
// the given calendar day, ascending by instant. The sort is stable, so
// events at the same instant keep their input order. Malformed events and
// events from inactive admins are dropped; an empty active set yields an
// empty result, never an error.
func EventsOnDay(date time.Time, events []store.Event, active map[string]bool) []store.Event {
	y, m, d := date.UTC().Date()
	var out []store.Event
	for _, ev := range events {
		if ev.Malformed || !active[ev.CreatedBy] {
			continue
		}
		ey, em, ed := ev.StartsAt.Date()
		if ey == y && em == m && ed == d {
			out = append(out, ev)
		}
	}
	sortByInstant(out)
	return out
}

// Upcoming returns up to limit visible events strictly after now, ascending
// by instant.
func Upcoming(events []store.Event, active map[string]bool, now time.Time, limit int) []store.Event {
	var out []store.Event
	for _, ev := range events {
		if ev.Malformed || !active[ev.CreatedBy] || !ev.StartsAt.After(now) {
			continue
		}
		out = append(out, ev)
	}
	sortByInstant(out)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BucketByDay groups the visible events of a month by day number, each
// bucket ascending by instant. Days without events have no bucket.
func BucketByDay(year, month int, events []store.Event, active map[string]bool) map[int][]store.Event {
	year, month = Norm(year, month)
	buckets := make(map[int][]store.Event)
	for _, ev := range events {
		if ev.Malformed || !active[ev.CreatedBy] {
			continue
		}
		y, m, d := ev.StartsAt.Date()
		if y == year && int(m)-1 == month {
			buckets[d] = append(buckets[d], ev)
		}
	}
	for day, evs := range buckets {
		sortByInstant(evs)
		buckets[day] = evs
	}
	return buckets
}

func sortByInstant(events []store.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartsAt.Before(events[j].StartsAt)
	})
}
