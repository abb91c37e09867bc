package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// userRepo implements UserRepository.
type userRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `id, email, password_hash, oauth_subject, is_admin, subscribed_to, created_at, last_login_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.OAuthSubject, &u.IsAdmin, &u.SubscribedTo, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*User, error) {
	defer observeDB(ctx, "db.users.get_by_id")()
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	defer observeDB(ctx, "db.users.get_by_email")()
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepo) Create(ctx context.Context, u User) (*User, error) {
	defer observeDB(ctx, "db.users.create")()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.SubscribedTo == nil {
		u.SubscribedTo = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, oauth_subject, is_admin, subscribed_to)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		u.ID, u.Email, u.PasswordHash, u.OAuthSubject, u.IsAdmin, u.SubscribedTo)
	return scanUser(row)
}

func (r *userRepo) UpsertOAuthUser(ctx context.Context, subject, email string) (*User, error) {
	defer observeDB(ctx, "db.users.upsert_oauth")()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, oauth_subject, last_login_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (oauth_subject)
		DO UPDATE SET email = EXCLUDED.email, last_login_at = NOW()
		RETURNING `+userColumns,
		uuid.NewString(), email, subject)
	return scanUser(row)
}

// ListAdmins returns admin accounts ordered by email, so filter registries
// built from the result assign colors deterministically.
func (r *userRepo) ListAdmins(ctx context.Context) ([]User, error) {
	defer observeDB(ctx, "db.users.list_admins")()
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE is_admin ORDER BY email`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var admins []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.OAuthSubject, &u.IsAdmin, &u.SubscribedTo, &u.CreatedAt, &u.LastLoginAt); err != nil {
			return nil, unavailable(err)
		}
		admins = append(admins, u)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return admins, nil
}

func (r *userRepo) RemoveSubscription(ctx context.Context, userID, adminID string) error {
	defer observeDB(ctx, "db.users.remove_subscription")()
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET subscribed_to = array_remove(subscribed_to, $2) WHERE id = $1`,
		userID, adminID)
	if err != nil {
		return unavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id string) error {
	defer observeDB(ctx, "db.users.touch_last_login")()
	if _, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id); err != nil {
		return unavailable(err)
	}
	return nil
}
