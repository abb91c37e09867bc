// Package subscription implements the request lifecycle between subscribers
// and admins: a subscriber asks to follow an admin, the admin accepts or
// denies, and acceptance links the two accounts.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jw6ventures/orgcal/internal/store"
)

var (
	// ErrDuplicateRequest is returned when the subscriber already follows
	// the admin or already has a pending request with them.
	ErrDuplicateRequest = errors.New("subscription request already exists")
	// ErrInvalidTransition is returned when accept or deny targets a
	// request that is no longer pending.
	ErrInvalidTransition = errors.New("request is not pending")
)

// Service coordinates the subscription request lifecycle on top of the store.
type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// Request files a pending subscription request from a subscriber to an
// admin. An existing subscription or a pending request to the same admin
// makes the call a duplicate; denied and accepted history does not.
func (s *Service) Request(ctx context.Context, subscriberID, adminID, message string) (*store.SubscriptionRequest, error) {
	admin, err := s.store.Users.GetByID(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("look up admin: %w", err)
	}
	if !admin.IsAdmin {
		return nil, store.ErrNotFound
	}

	subscriber, err := s.store.Users.GetByID(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("look up subscriber: %w", err)
	}
	if slices.Contains(subscriber.SubscribedTo, adminID) {
		return nil, ErrDuplicateRequest
	}

	pending, err := s.store.Subscriptions.HasPending(ctx, adminID, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("check pending: %w", err)
	}
	if pending {
		return nil, ErrDuplicateRequest
	}

	req, err := s.store.Subscriptions.CreateRequest(ctx, store.SubscriptionRequest{
		AdminID: adminID,
		From:    subscriberID,
		Status:  store.StatusPending,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

// Accept marks a pending request accepted and links the subscriber to the
// admin. The three effects (request status, the subscriber's followed list,
// the admin's subscriber index) apply atomically; a request that was handled
// in the meantime yields ErrInvalidTransition.
func (s *Service) Accept(ctx context.Context, adminID, requestID, subscriberID string) error {
	err := s.store.Subscriptions.AcceptPending(ctx, adminID, requestID, subscriberID)
	if errors.Is(err, store.ErrAlreadyHandled) {
		return ErrInvalidTransition
	}
	return err
}

// Deny marks a pending request denied. The subscriber's followed list is
// untouched.
func (s *Service) Deny(ctx context.Context, adminID, requestID string) error {
	err := s.store.Subscriptions.DenyPending(ctx, adminID, requestID)
	if errors.Is(err, store.ErrAlreadyHandled) {
		return ErrInvalidTransition
	}
	return err
}

// Unsubscribe removes an admin from the subscriber's followed list. Request
// history is kept as-is, so the subscriber may request again later.
func (s *Service) Unsubscribe(ctx context.Context, subscriberID, adminID string) error {
	return s.store.Users.RemoveSubscription(ctx, subscriberID, adminID)
}

// PendingForAdmin lists the open requests awaiting an admin's decision,
// newest first.
func (s *Service) PendingForAdmin(ctx context.Context, adminID string) ([]store.SubscriptionRequest, error) {
	return s.store.Subscriptions.ListPendingForAdmin(ctx, adminID)
}

// PendingFrom lists a subscriber's own open requests across all admins.
func (s *Service) PendingFrom(ctx context.Context, subscriberID string) ([]store.SubscriptionRequest, error) {
	return s.store.Subscriptions.ListPendingFrom(ctx, subscriberID)
}
