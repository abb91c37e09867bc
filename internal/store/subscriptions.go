package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// subscriptionRepo implements SubscriptionRepository.
type subscriptionRepo struct {
	pool *pgxpool.Pool
}

const requestColumns = `id, admin_id, from_user, status, message, created_at, handled_at`

func scanRequest(row pgx.Row) (*SubscriptionRequest, error) {
	var req SubscriptionRequest
	err := row.Scan(&req.ID, &req.AdminID, &req.From, &req.Status, &req.Message, &req.CreatedAt, &req.HandledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}
	return &req, nil
}

func collectRequests(rows pgx.Rows) ([]SubscriptionRequest, error) {
	defer rows.Close()
	var requests []SubscriptionRequest
	for rows.Next() {
		var req SubscriptionRequest
		if err := rows.Scan(&req.ID, &req.AdminID, &req.From, &req.Status, &req.Message, &req.CreatedAt, &req.HandledAt); err != nil {
			return nil, unavailable(err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return requests, nil
}

func (r *subscriptionRepo) CreateRequest(ctx context.Context, req SubscriptionRequest) (*SubscriptionRequest, error) {
	defer observeDB(ctx, "db.requests.create")()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO subscription_requests (id, admin_id, from_user, status, message)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING `+requestColumns,
		req.ID, req.AdminID, req.From, req.Message)
	return scanRequest(row)
}

func (r *subscriptionRepo) GetRequest(ctx context.Context, adminID, id string) (*SubscriptionRequest, error) {
	defer observeDB(ctx, "db.requests.get")()
	row := r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM subscription_requests WHERE admin_id = $1 AND id = $2`,
		adminID, id)
	return scanRequest(row)
}

// ListPendingForAdmin returns the admin's inbox, newest first. Terminal
// requests are filtered here so they never resurface as actionable.
func (r *subscriptionRepo) ListPendingForAdmin(ctx context.Context, adminID string) ([]SubscriptionRequest, error) {
	defer observeDB(ctx, "db.requests.list_pending_for_admin")()
	rows, err := r.pool.Query(ctx,
		`SELECT `+requestColumns+` FROM subscription_requests
		 WHERE admin_id = $1 AND status = 'pending' ORDER BY created_at DESC`,
		adminID)
	if err != nil {
		return nil, unavailable(err)
	}
	return collectRequests(rows)
}

// ListPendingFrom returns a subscriber's outstanding requests across all
// admins (the collection-group query of the original storage layout).
func (r *subscriptionRepo) ListPendingFrom(ctx context.Context, subscriberID string) ([]SubscriptionRequest, error) {
	defer observeDB(ctx, "db.requests.list_pending_from")()
	rows, err := r.pool.Query(ctx,
		`SELECT `+requestColumns+` FROM subscription_requests
		 WHERE from_user = $1 AND status = 'pending' ORDER BY created_at DESC`,
		subscriberID)
	if err != nil {
		return nil, unavailable(err)
	}
	return collectRequests(rows)
}

func (r *subscriptionRepo) HasPending(ctx context.Context, adminID, subscriberID string) (bool, error) {
	defer observeDB(ctx, "db.requests.has_pending")()
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM subscription_requests
			WHERE admin_id = $1 AND from_user = $2 AND status = 'pending'
		)`, adminID, subscriberID).Scan(&exists)
	if err != nil {
		return false, unavailable(err)
	}
	return exists, nil
}

// AcceptPending commits the three accept effects as one transaction: the
// status change, the subscriber's subscribed_to gaining the admin (set
// semantics), and the admin-side subscriber row. None of them apply unless
// all do.
func (r *subscriptionRepo) AcceptPending(ctx context.Context, adminID, requestID, subscriberID string) error {
	defer observeDB(ctx, "db.requests.accept")()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return unavailable(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status, err := lockRequest(ctx, tx, adminID, requestID, subscriberID)
	if err != nil {
		return err
	}
	if status != StatusPending {
		return ErrAlreadyHandled
	}

	if _, err := tx.Exec(ctx,
		`UPDATE subscription_requests SET status = 'accepted', handled_at = NOW()
		 WHERE admin_id = $1 AND id = $2`,
		adminID, requestID); err != nil {
		return unavailable(err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE users SET subscribed_to = array_append(subscribed_to, $2)
		 WHERE id = $1 AND NOT ($2 = ANY(subscribed_to))`,
		subscriberID, adminID); err != nil {
		return unavailable(err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO subscribers (admin_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (admin_id, user_id) DO NOTHING`,
		adminID, subscriberID); err != nil {
		return unavailable(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

// DenyPending flips a pending request to denied. No other state changes.
func (r *subscriptionRepo) DenyPending(ctx context.Context, adminID, requestID string) error {
	defer observeDB(ctx, "db.requests.deny")()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return unavailable(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status, err := lockRequest(ctx, tx, adminID, requestID, "")
	if err != nil {
		return err
	}
	if status != StatusPending {
		return ErrAlreadyHandled
	}

	if _, err := tx.Exec(ctx,
		`UPDATE subscription_requests SET status = 'denied', handled_at = NOW()
		 WHERE admin_id = $1 AND id = $2`,
		adminID, requestID); err != nil {
		return unavailable(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

// lockRequest reads the request row under FOR UPDATE so the status check and
// the subsequent writes see a consistent state even when an accept and a
// deny race. An empty subscriberID skips the sender check.
func lockRequest(ctx context.Context, tx pgx.Tx, adminID, requestID, subscriberID string) (RequestStatus, error) {
	var status RequestStatus
	var from string
	err := tx.QueryRow(ctx,
		`SELECT status, from_user FROM subscription_requests
		 WHERE admin_id = $1 AND id = $2 FOR UPDATE`,
		adminID, requestID).Scan(&status, &from)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", unavailable(err)
	}
	if subscriberID != "" && from != subscriberID {
		return "", ErrNotFound
	}
	return status, nil
}

func (r *subscriptionRepo) ListSubscribers(ctx context.Context, adminID string) ([]Subscriber, error) {
	defer observeDB(ctx, "db.subscribers.list")()
	rows, err := r.pool.Query(ctx,
		`SELECT admin_id, user_id, subscribed_at FROM subscribers WHERE admin_id = $1 ORDER BY subscribed_at`,
		adminID)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var subs []Subscriber
	for rows.Next() {
		var s Subscriber
		if err := rows.Scan(&s.AdminID, &s.UserID, &s.SubscribedAt); err != nil {
			return nil, unavailable(err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return subs, nil
}
