package store

import "context"

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u User) (*User, error)
	UpsertOAuthUser(ctx context.Context, subject, email string) (*User, error)
	ListAdmins(ctx context.Context) ([]User, error)
	RemoveSubscription(ctx context.Context, userID, adminID string) error
	TouchLastLogin(ctx context.Context, id string) error
}

// EventRepository handles event storage. Datetimes are normalized to an
// instant on the way out; see ParseInstant.
type EventRepository interface {
	Create(ctx context.Context, ev Event) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	ListAll(ctx context.Context) ([]Event, error)
	ListByCreator(ctx context.Context, adminID string) ([]Event, error)
	Delete(ctx context.Context, adminID, id string) error
}

// SubscriptionRepository stores subscription requests and the admin-side
// subscriber index. AcceptPending applies the accept side effects as one
// transaction; DenyPending only flips the request status.
type SubscriptionRepository interface {
	CreateRequest(ctx context.Context, req SubscriptionRequest) (*SubscriptionRequest, error)
	GetRequest(ctx context.Context, adminID, id string) (*SubscriptionRequest, error)
	ListPendingForAdmin(ctx context.Context, adminID string) ([]SubscriptionRequest, error)
	ListPendingFrom(ctx context.Context, subscriberID string) ([]SubscriptionRequest, error)
	HasPending(ctx context.Context, adminID, subscriberID string) (bool, error)
	AcceptPending(ctx context.Context, adminID, requestID, subscriberID string) error
	DenyPending(ctx context.Context, adminID, requestID string) error
	ListSubscribers(ctx context.Context, adminID string) ([]Subscriber, error)
}
