package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jw6ventures/orgcal/internal/auth"
	"github.com/jw6ventures/orgcal/internal/config"
	"github.com/jw6ventures/orgcal/internal/store"
	"github.com/jw6ventures/orgcal/internal/subscription"
)

type fakeUserRepo struct {
	users map[string]*store.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*store.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*store.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, u store.User) (*store.User, error) {
	f.users[u.ID] = &u
	return &u, nil
}

func (f *fakeUserRepo) UpsertOAuthUser(_ context.Context, subject, email string) (*store.User, error) {
	return nil, store.ErrNotFound
}

func (f *fakeUserRepo) ListAdmins(_ context.Context) ([]store.User, error) {
	var out []store.User
	for _, id := range []string{"adminA", "adminB"} {
		if u, ok := f.users[id]; ok && u.IsAdmin {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) RemoveSubscription(_ context.Context, userID, adminID string) error {
	return store.ErrNotFound
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, id string) error { return nil }

type fakeEventRepo struct {
	events []store.Event
}

func (f *fakeEventRepo) Create(_ context.Context, ev store.Event) (*store.Event, error) {
	f.events = append(f.events, ev)
	return &ev, nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (*store.Event, error) {
	for _, ev := range f.events {
		if ev.ID == id {
			cp := ev
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeEventRepo) ListAll(_ context.Context) ([]store.Event, error) {
	return append([]store.Event(nil), f.events...), nil
}

func (f *fakeEventRepo) ListByCreator(_ context.Context, adminID string) ([]store.Event, error) {
	var out []store.Event
	for _, ev := range f.events {
		if ev.CreatedBy == adminID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Delete(_ context.Context, adminID, id string) error {
	for i, ev := range f.events {
		if ev.ID == id && ev.CreatedBy == adminID {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeSubscriptionRepo struct {
	requests []store.SubscriptionRequest
}

func (f *fakeSubscriptionRepo) CreateRequest(_ context.Context, req store.SubscriptionRequest) (*store.SubscriptionRequest, error) {
	f.requests = append(f.requests, req)
	return &req, nil
}

func (f *fakeSubscriptionRepo) GetRequest(_ context.Context, adminID, id string) (*store.SubscriptionRequest, error) {
	return nil, store.ErrNotFound
}

func (f *fakeSubscriptionRepo) ListPendingForAdmin(_ context.Context, adminID string) ([]store.SubscriptionRequest, error) {
	var out []store.SubscriptionRequest
	for _, req := range f.requests {
		if req.AdminID == adminID && req.Status == store.StatusPending {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) ListPendingFrom(_ context.Context, subscriberID string) ([]store.SubscriptionRequest, error) {
	var out []store.SubscriptionRequest
	for _, req := range f.requests {
		if req.From == subscriberID && req.Status == store.StatusPending {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) HasPending(_ context.Context, adminID, subscriberID string) (bool, error) {
	for _, req := range f.requests {
		if req.AdminID == adminID && req.From == subscriberID && req.Status == store.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubscriptionRepo) AcceptPending(_ context.Context, adminID, requestID, subscriberID string) error {
	return store.ErrNotFound
}

func (f *fakeSubscriptionRepo) DenyPending(_ context.Context, adminID, requestID string) error {
	return store.ErrNotFound
}

func (f *fakeSubscriptionRepo) ListSubscribers(_ context.Context, adminID string) ([]store.Subscriber, error) {
	return nil, nil
}

func newTestHandler(t *testing.T, users *fakeUserRepo, events *fakeEventRepo, subs *fakeSubscriptionRepo) *Handler {
	t.Helper()

	cfg := &config.Config{
		BaseURL:       "http://localhost:8080",
		WatchInterval: 10 * time.Millisecond,
	}
	cfg.Session.Secret = "0123456789abcdef0123456789abcdef"

	st := &store.Store{Users: users, Events: events, Subscriptions: subs}
	sessions := auth.NewSessionManager(cfg)
	authService, err := auth.NewService(context.Background(), cfg, st, sessions)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}

	h := NewHandler(cfg, st, authService, subscription.NewService(st))
	h.now = func() time.Time {
		return time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)
	}
	return h
}

func defaultFixture() (*fakeUserRepo, *fakeEventRepo, *fakeSubscriptionRepo) {
	users := &fakeUserRepo{users: map[string]*store.User{
		"adminA": {ID: "adminA", Email: "styret@org.no", IsAdmin: true},
		"adminB": {ID: "adminB", Email: "kor@org.no", IsAdmin: true},
		"viewer": {ID: "viewer", Email: "medlem@org.no", SubscribedTo: []string{"adminA"}},
	}}
	events := &fakeEventRepo{events: []store.Event{
		{
			ID:        "e1",
			Title:     "Styremøte",
			StartsAt:  time.Date(2024, time.May, 10, 14, 30, 0, 0, time.UTC),
			CreatedBy: "adminA",
		},
	}}
	return users, events, &fakeSubscriptionRepo{}
}

func asUser(r *http.Request, u *store.User) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), u))
}

func TestCalendarShowsEvent(t *testing.T) {
	users, events, subs := defaultFixture()
	h := newTestHandler(t, users, events, subs)

	r := httptest.NewRequest(http.MethodGet, "/calendar?y=2024&m=4", nil)
	w := httptest.NewRecorder()
	h.Calendar(w, asUser(r, users.users["viewer"]))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Styremøte") {
		t.Fatalf("calendar body missing event title")
	}
	if !strings.Contains(body, "14:30") {
		t.Fatalf("calendar body missing event time")
	}
	if !strings.Contains(body, "mai 2024") {
		t.Fatalf("calendar body missing month title")
	}
}

func TestCalendarHidesToggledOffAdmin(t *testing.T) {
	users, events, subs := defaultFixture()
	h := newTestHandler(t, users, events, subs)

	r := httptest.NewRequest(http.MethodGet, "/calendar?y=2024&m=4&off=adminA", nil)
	w := httptest.NewRecorder()
	h.Calendar(w, asUser(r, users.users["viewer"]))

	if strings.Contains(w.Body.String(), "Styremøte") {
		t.Fatalf("toggled-off admin's event still rendered")
	}
}

func TestDashboardShowsUpcomingForSubscribedOnly(t *testing.T) {
	users, events, subs := defaultFixture()
	events.events = append(events.events, store.Event{
		ID:        "e2",
		Title:     "Korøvelse",
		StartsAt:  time.Date(2024, time.May, 12, 19, 0, 0, 0, time.UTC),
		CreatedBy: "adminB",
	})
	h := newTestHandler(t, users, events, subs)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.Dashboard(w, asUser(r, users.users["viewer"]))

	body := w.Body.String()
	if !strings.Contains(body, "Styremøte") {
		t.Fatalf("dashboard missing subscribed admin's event")
	}
	if strings.Contains(body, "Korøvelse") {
		t.Fatalf("dashboard shows event from admin the viewer does not follow")
	}
}

func TestAdminCalendarShowsOwnEventsOnly(t *testing.T) {
	users, events, subs := defaultFixture()
	events.events = append(events.events, store.Event{
		ID:        "e2",
		Title:     "Korøvelse",
		StartsAt:  time.Date(2024, time.May, 12, 19, 0, 0, 0, time.UTC),
		CreatedBy: "adminB",
	})
	h := newTestHandler(t, users, events, subs)

	r := httptest.NewRequest(http.MethodGet, "/my-calendar?y=2024&m=4", nil)
	w := httptest.NewRecorder()
	h.AdminCalendar(w, asUser(r, users.users["adminA"]))

	body := w.Body.String()
	if !strings.Contains(body, "Styremøte") {
		t.Fatalf("admin calendar missing own event")
	}
	if strings.Contains(body, "Korøvelse") {
		t.Fatalf("admin calendar shows another admin's event")
	}
}

func TestRequestInbox(t *testing.T) {
	users, events, subs := defaultFixture()
	subs.requests = append(subs.requests, store.SubscriptionRequest{
		ID:        "req-1",
		AdminID:   "adminA",
		From:      "viewer",
		Status:    store.StatusPending,
		CreatedAt: time.Now().Add(-time.Minute),
	})
	h := newTestHandler(t, users, events, subs)

	r := httptest.NewRequest(http.MethodGet, "/requests", nil)
	w := httptest.NewRecorder()
	h.RequestInbox(w, asUser(r, users.users["adminA"]))

	body := w.Body.String()
	if !strings.Contains(body, "medlem@org.no") {
		t.Fatalf("inbox missing requester email")
	}
	if !strings.Contains(body, "req-1") {
		t.Fatalf("inbox missing request id in action URL")
	}
}

func TestRequestInboxEmptyState(t *testing.T) {
	users, events, subs := defaultFixture()
	h := newTestHandler(t, users, events, subs)

	r := httptest.NewRequest(http.MethodGet, "/requests", nil)
	w := httptest.NewRecorder()
	h.RequestInbox(w, asUser(r, users.users["adminA"]))

	if !strings.Contains(w.Body.String(), "Ingen ventende") {
		t.Fatalf("inbox missing empty state")
	}
}

func TestCalendarFeed(t *testing.T) {
	users, events, subs := defaultFixture()
	h := newTestHandler(t, users, events, subs)

	r := httptest.NewRequest(http.MethodGet, "/calendar.ics", nil)
	w := httptest.NewRecorder()
	h.CalendarFeed(w, asUser(r, users.users["viewer"]))

	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/calendar") {
		t.Fatalf("content type = %q", got)
	}
	body := w.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		t.Fatalf("feed is not an iCalendar document")
	}
	if !strings.Contains(body, "SUMMARY:Styremøte") {
		t.Fatalf("feed missing subscribed event")
	}
}

func TestSubscriptionsPageMarksPending(t *testing.T) {
	users, events, subs := defaultFixture()
	subs.requests = append(subs.requests, store.SubscriptionRequest{
		ID:        "req-2",
		AdminID:   "adminB",
		From:      "viewer",
		Status:    store.StatusPending,
		CreatedAt: time.Now(),
	})
	h := newTestHandler(t, users, events, subs)

	r := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
	w := httptest.NewRecorder()
	h.Subscriptions(w, asUser(r, users.users["viewer"]))

	body := w.Body.String()
	if !strings.Contains(body, "(Venter...)") {
		t.Fatalf("pending admin option not marked as waiting")
	}
	if !strings.Contains(body, "styret") {
		t.Fatalf("subscribed admin missing from page")
	}
}
