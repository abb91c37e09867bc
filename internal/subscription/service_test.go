package subscription

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/jw6ventures/orgcal/internal/store"
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
	return nil, errors.New("not used")
}

func (f *fakeUserRepo) ListAdmins(_ context.Context) ([]store.User, error) {
	var out []store.User
	for _, u := range f.users {
		if u.IsAdmin {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) RemoveSubscription(_ context.Context, userID, adminID string) error {
	u, ok := f.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	i := slices.Index(u.SubscribedTo, adminID)
	if i < 0 {
		return store.ErrNotFound
	}
	u.SubscribedTo = slices.Delete(u.SubscribedTo, i, i+1)
	return nil
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, id string) error { return nil }

type fakeSubscriptionRepo struct {
	users       *fakeUserRepo
	requests    map[string]*store.SubscriptionRequest
	subscribers map[string][]store.Subscriber
	nextID      int
}

func (f *fakeSubscriptionRepo) CreateRequest(_ context.Context, req store.SubscriptionRequest) (*store.SubscriptionRequest, error) {
	f.nextID++
	req.ID = fmt.Sprintf("req-%d", f.nextID)
	req.CreatedAt = time.Now()
	f.requests[req.ID] = &req
	cp := req
	return &cp, nil
}

func (f *fakeSubscriptionRepo) GetRequest(_ context.Context, adminID, id string) (*store.SubscriptionRequest, error) {
	req, ok := f.requests[id]
	if !ok || req.AdminID != adminID {
		return nil, store.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (f *fakeSubscriptionRepo) ListPendingForAdmin(_ context.Context, adminID string) ([]store.SubscriptionRequest, error) {
	var out []store.SubscriptionRequest
	for _, req := range f.requests {
		if req.AdminID == adminID && req.Status == store.StatusPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) ListPendingFrom(_ context.Context, subscriberID string) ([]store.SubscriptionRequest, error) {
	var out []store.SubscriptionRequest
	for _, req := range f.requests {
		if req.From == subscriberID && req.Status == store.StatusPending {
			out = append(out, *req)
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
	req, ok := f.requests[requestID]
	if !ok || req.AdminID != adminID || req.From != subscriberID {
		return store.ErrNotFound
	}
	if req.Status != store.StatusPending {
		return store.ErrAlreadyHandled
	}
	now := time.Now()
	req.Status = store.StatusAccepted
	req.HandledAt = &now
	u := f.users.users[subscriberID]
	if !slices.Contains(u.SubscribedTo, adminID) {
		u.SubscribedTo = append(u.SubscribedTo, adminID)
	}
	f.subscribers[adminID] = append(f.subscribers[adminID], store.Subscriber{
		AdminID: adminID, UserID: subscriberID, SubscribedAt: now,
	})
	return nil
}

func (f *fakeSubscriptionRepo) DenyPending(_ context.Context, adminID, requestID string) error {
	req, ok := f.requests[requestID]
	if !ok || req.AdminID != adminID {
		return store.ErrNotFound
	}
	if req.Status != store.StatusPending {
		return store.ErrAlreadyHandled
	}
	now := time.Now()
	req.Status = store.StatusDenied
	req.HandledAt = &now
	return nil
}

func (f *fakeSubscriptionRepo) ListSubscribers(_ context.Context, adminID string) ([]store.Subscriber, error) {
	return f.subscribers[adminID], nil
}

func newFixture() (*Service, *fakeUserRepo, *fakeSubscriptionRepo) {
	users := &fakeUserRepo{users: map[string]*store.User{
		"adm": {ID: "adm", Email: "leder@org.no", IsAdmin: true},
		"sub": {ID: "sub", Email: "medlem@org.no"},
	}}
	subs := &fakeSubscriptionRepo{
		users:       users,
		requests:    map[string]*store.SubscriptionRequest{},
		subscribers: map[string][]store.Subscriber{},
	}
	svc := NewService(&store.Store{Users: users, Subscriptions: subs})
	return svc, users, subs
}

func TestRequestCreatesPending(t *testing.T) {
	svc, _, _ := newFixture()

	req, err := svc.Request(context.Background(), "sub", "adm", "hei")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if req.Status != store.StatusPending {
		t.Fatalf("status = %q, want pending", req.Status)
	}
	if req.AdminID != "adm" || req.From != "sub" {
		t.Fatalf("request routing wrong: %+v", req)
	}
}

func TestRequestDuplicatePending(t *testing.T) {
	svc, _, _ := newFixture()

	if _, err := svc.Request(context.Background(), "sub", "adm", ""); err != nil {
		t.Fatalf("first request: %v", err)
	}
	_, err := svc.Request(context.Background(), "sub", "adm", "")
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("second request err = %v, want ErrDuplicateRequest", err)
	}
}

func TestRequestAlreadySubscribed(t *testing.T) {
	svc, users, _ := newFixture()
	users.users["sub"].SubscribedTo = []string{"adm"}

	_, err := svc.Request(context.Background(), "sub", "adm", "")
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("err = %v, want ErrDuplicateRequest", err)
	}
}

func TestRequestToNonAdmin(t *testing.T) {
	svc, users, _ := newFixture()
	users.users["plain"] = &store.User{ID: "plain", Email: "plain@org.no"}

	_, err := svc.Request(context.Background(), "sub", "plain", "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAcceptAppliesAllEffects(t *testing.T) {
	svc, users, subs := newFixture()
	req, err := svc.Request(context.Background(), "sub", "adm", "")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	if err := svc.Accept(context.Background(), "adm", req.ID, "sub"); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	stored := subs.requests[req.ID]
	if stored.Status != store.StatusAccepted || stored.HandledAt == nil {
		t.Fatalf("request after accept = %+v", stored)
	}
	got := users.users["sub"].SubscribedTo
	if len(got) != 1 || got[0] != "adm" {
		t.Fatalf("subscribedTo = %v, want exactly [adm]", got)
	}
	rows := subs.subscribers["adm"]
	if len(rows) != 1 || rows[0].UserID != "sub" {
		t.Fatalf("subscriber index = %+v", rows)
	}
}

func TestAcceptTwiceIsInvalidTransition(t *testing.T) {
	svc, _, _ := newFixture()
	req, _ := svc.Request(context.Background(), "sub", "adm", "")

	if err := svc.Accept(context.Background(), "adm", req.ID, "sub"); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	err := svc.Accept(context.Background(), "adm", req.ID, "sub")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second accept err = %v, want ErrInvalidTransition", err)
	}
}

func TestDenyLeavesSubscriptionsAlone(t *testing.T) {
	svc, users, subs := newFixture()
	req, _ := svc.Request(context.Background(), "sub", "adm", "")

	if err := svc.Deny(context.Background(), "adm", req.ID); err != nil {
		t.Fatalf("Deny: %v", err)
	}
	stored := subs.requests[req.ID]
	if stored.Status != store.StatusDenied || stored.HandledAt == nil {
		t.Fatalf("request after deny = %+v", stored)
	}
	if len(users.users["sub"].SubscribedTo) != 0 {
		t.Fatalf("deny must not link the subscriber")
	}

	err := svc.Accept(context.Background(), "adm", req.ID, "sub")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("accept after deny err = %v, want ErrInvalidTransition", err)
	}
}

func TestUnsubscribeKeepsHistory(t *testing.T) {
	svc, users, subs := newFixture()
	req, _ := svc.Request(context.Background(), "sub", "adm", "")
	if err := svc.Accept(context.Background(), "adm", req.ID, "sub"); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if err := svc.Unsubscribe(context.Background(), "sub", "adm"); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if len(users.users["sub"].SubscribedTo) != 0 {
		t.Fatalf("unsubscribe must clear the link")
	}
	if subs.requests[req.ID].Status != store.StatusAccepted {
		t.Fatalf("history must survive unsubscribe")
	}

	// With the old request terminal, a fresh request is allowed.
	if _, err := svc.Request(context.Background(), "sub", "adm", ""); err != nil {
		t.Fatalf("re-request after unsubscribe: %v", err)
	}
}
