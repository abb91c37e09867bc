package store

import "time"

// User is an account record. Admin accounts (organizations) carry IsAdmin
// and may create events; regular accounts follow admins via SubscribedTo.
type User struct {
	ID           string
	Email        string
	PasswordHash *string
	OAuthSubject *string
	IsAdmin      bool
	SubscribedTo []string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Event is a dated happening created by an admin. RawDatetime keeps the
// value exactly as the writer stored it; StartsAt is the normalized UTC
// instant and is only meaningful when Malformed is false.
type Event struct {
	ID          string
	Title       string
	RawDatetime string
	StartsAt    time.Time
	Malformed   bool
	Location    string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

// RequestStatus is the lifecycle state of a subscription request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusDenied   RequestStatus = "denied"
)

// SubscriptionRequest mediates subscriber-to-admin following. Once accepted
// or denied the record is immutable; HandledAt is set on that transition.
type SubscriptionRequest struct {
	ID        string
	AdminID   string
	From      string
	Status    RequestStatus
	Message   string
	CreatedAt time.Time
	HandledAt *time.Time
}

// Subscriber is the admin-side reverse index entry written when a request
// is accepted.
type Subscriber struct {
	AdminID      string
	UserID       string
	SubscribedAt time.Time
}
