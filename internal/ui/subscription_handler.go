package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jw6ventures/orgcal/internal/auth"
	"github.com/jw6ventures/orgcal/internal/calendar"
	httperrors "github.com/jw6ventures/orgcal/internal/http/errors"
	"github.com/jw6ventures/orgcal/internal/live"
	"github.com/jw6ventures/orgcal/internal/metrics"
	"github.com/jw6ventures/orgcal/internal/store"
	"github.com/jw6ventures/orgcal/internal/subscription"
)

// Subscriptions shows what the viewer follows, their open requests, and a
// picker for admins they can still request.
func (h *Handler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	admins, err := h.store.Users.ListAdmins(r.Context())
	if err != nil {
		h.renderError(w, r, err, "failed to load admins")
		return
	}
	pending, err := h.subs.PendingFrom(r.Context(), user.ID)
	if err != nil {
		h.renderError(w, r, err, "failed to load pending requests")
		return
	}

	registry := calendar.BuildRegistry(admins, calendar.AllAdmins, user.SubscribedTo)

	followed := make(map[string]bool, len(user.SubscribedTo))
	for _, id := range user.SubscribedTo {
		followed[id] = true
	}
	pendingTo := make(map[string]bool, len(pending))
	for _, req := range pending {
		pendingTo[req.AdminID] = true
	}

	type adminOption struct {
		ID          string
		DisplayName string
		Pending     bool
	}
	type subscriptionRow struct {
		ID          string
		DisplayName string
		Color       string
	}

	var options []adminOption
	var subscriptions []subscriptionRow
	for _, e := range registry.Entries() {
		if followed[e.ID] {
			subscriptions = append(subscriptions, subscriptionRow{
				ID: e.ID, DisplayName: e.DisplayName, Color: e.Color,
			})
			continue
		}
		options = append(options, adminOption{
			ID: e.ID, DisplayName: e.DisplayName, Pending: pendingTo[e.ID],
		})
	}

	data := h.withFlash(r, map[string]any{
		"Title":         "Abonnementer",
		"User":          user,
		"Subscriptions": subscriptions,
		"Options":       options,
		"Pending":       pending,
	})
	h.render(w, r, "subscriptions.html", data)
}

// RequestSubscription files a request to follow an admin.
func (h *Handler) RequestSubscription(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	adminID := strings.TrimSpace(r.FormValue("admin_id"))
	if adminID == "" {
		h.redirect(w, r, "/subscriptions", map[string]string{"error": "missing_admin"})
		return
	}

	_, err := h.subs.Request(r.Context(), user.ID, adminID, strings.TrimSpace(r.FormValue("message")))
	switch {
	case errors.Is(err, subscription.ErrDuplicateRequest):
		h.redirect(w, r, "/subscriptions", map[string]string{"error": "duplicate_request"})
	case errors.Is(err, store.ErrNotFound):
		h.redirect(w, r, "/subscriptions", map[string]string{"error": "unknown_admin"})
	case err != nil:
		h.renderError(w, r, err, "failed to create request")
	default:
		h.redirect(w, r, "/subscriptions", map[string]string{"status": "requested"})
	}
}

// Unsubscribe removes a follow link. Request history is kept.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	adminID := chi.URLParam(r, "adminID")

	err := h.subs.Unsubscribe(r.Context(), user.ID, adminID)
	if errors.Is(err, store.ErrNotFound) {
		h.redirect(w, r, "/subscriptions", map[string]string{"error": "not_subscribed"})
		return
	}
	if err != nil {
		h.renderError(w, r, err, "failed to unsubscribe")
		return
	}
	h.redirect(w, r, "/subscriptions", map[string]string{"status": "unsubscribed"})
}

// pendingUpdate is one pending request in the SSE payload.
type pendingUpdate struct {
	RequestID string    `json:"requestId"`
	AdminID   string    `json:"adminId"`
	AdminName string    `json:"adminName"`
	CreatedAt time.Time `json:"createdAt"`
}

// PendingStream pushes the viewer's open requests over server-sent events,
// re-sending whenever the set changes.
func (h *Handler) PendingStream(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	admins, err := h.store.Users.ListAdmins(r.Context())
	if err != nil {
		h.renderError(w, r, err, "failed to load admins")
		return
	}
	adminNames := make(map[string]string, len(admins))
	registry := calendar.BuildRegistry(admins, calendar.AllAdmins, nil)
	for _, e := range registry.Entries() {
		adminNames[e.ID] = e.DisplayName
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	watcher := live.Watch(r.Context(), func(ctx context.Context) ([]pendingUpdate, error) {
		pending, err := h.subs.PendingFrom(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		updates := make([]pendingUpdate, 0, len(pending))
		for _, req := range pending {
			name := adminNames[req.AdminID]
			if name == "" {
				name = req.AdminID
			}
			updates = append(updates, pendingUpdate{
				RequestID: req.ID,
				AdminID:   req.AdminID,
				AdminName: name,
				CreatedAt: req.CreatedAt,
			})
		}
		return updates, nil
	}, h.cfg.WatchInterval)

	for snapshot := range watcher.Snapshots() {
		payload, err := json.Marshal(snapshot)
		if err != nil {
			httperrors.LogError(r, "failed to encode pending snapshot", err)
			return
		}
		if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}

// RequestInbox lists the open requests awaiting the admin's decision.
func (h *Handler) RequestInbox(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	pending, err := h.subs.PendingForAdmin(r.Context(), user.ID)
	if err != nil {
		h.renderError(w, r, err, "failed to load requests")
		return
	}

	type requestRow struct {
		ID        string
		From      string
		FromEmail string
		Message   string
		CreatedAt time.Time
	}
	rows := make([]requestRow, 0, len(pending))
	for _, req := range pending {
		row := requestRow{
			ID:        req.ID,
			From:      req.From,
			FromEmail: req.From,
			Message:   req.Message,
			CreatedAt: req.CreatedAt,
		}
		if requester, err := h.store.Users.GetByID(r.Context(), req.From); err == nil {
			row.FromEmail = requester.Email
		}
		rows = append(rows, row)
	}

	data := h.withFlash(r, map[string]any{
		"Title":    "Forespørsler",
		"User":     user,
		"Requests": rows,
	})
	h.render(w, r, "requests.html", data)
}

// AcceptRequest accepts a pending request addressed to the signed-in admin.
func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	requestID := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	from := strings.TrimSpace(r.FormValue("from"))
	if from == "" {
		h.redirect(w, r, "/requests", map[string]string{"error": "missing_from"})
		return
	}

	err := h.subs.Accept(r.Context(), user.ID, requestID, from)
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.redirect(w, r, "/requests", map[string]string{"error": "unknown_request"})
	case errors.Is(err, subscription.ErrInvalidTransition):
		h.redirect(w, r, "/requests", map[string]string{"error": "already_handled"})
	case err != nil:
		h.renderError(w, r, err, "failed to accept request")
	default:
		metrics.CountDecision("accepted")
		h.redirect(w, r, "/requests", map[string]string{"status": "accepted"})
	}
}

// DenyRequest denies a pending request addressed to the signed-in admin.
func (h *Handler) DenyRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	requestID := chi.URLParam(r, "id")

	err := h.subs.Deny(r.Context(), user.ID, requestID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.redirect(w, r, "/requests", map[string]string{"error": "unknown_request"})
	case errors.Is(err, subscription.ErrInvalidTransition):
		h.redirect(w, r, "/requests", map[string]string{"error": "already_handled"})
	case err != nil:
		h.renderError(w, r, err, "failed to deny request")
	default:
		metrics.CountDecision("denied")
		h.redirect(w, r, "/requests", map[string]string{"status": "denied"})
	}
}
