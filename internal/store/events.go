package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// eventRepo implements EventRepository.
type eventRepo struct {
	pool *pgxpool.Pool
}

const eventColumns = `id, title, datetime, location, description, created_by, created_at`

// normalizeEvent resolves the stored datetime to an instant. Unparseable
// values are kept but flagged so aggregation can drop them instead of the
// whole listing failing.
func normalizeEvent(ev *Event) {
	t, err := ParseInstant(ev.RawDatetime)
	if err != nil {
		ev.Malformed = true
		return
	}
	ev.StartsAt = t
}

func scanEvent(row pgx.Row) (*Event, error) {
	var ev Event
	err := row.Scan(&ev.ID, &ev.Title, &ev.RawDatetime, &ev.Location, &ev.Description, &ev.CreatedBy, &ev.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}
	normalizeEvent(&ev)
	return &ev, nil
}

func collectEvents(rows pgx.Rows) ([]Event, error) {
	defer rows.Close()
	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.RawDatetime, &ev.Location, &ev.Description, &ev.CreatedBy, &ev.CreatedAt); err != nil {
			return nil, unavailable(err)
		}
		normalizeEvent(&ev)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return events, nil
}

func (r *eventRepo) Create(ctx context.Context, ev Event) (*Event, error) {
	defer observeDB(ctx, "db.events.create")()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (id, title, datetime, location, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+eventColumns,
		ev.ID, ev.Title, ev.RawDatetime, ev.Location, ev.Description, ev.CreatedBy)
	return scanEvent(row)
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*Event, error) {
	defer observeDB(ctx, "db.events.get_by_id")()
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

func (r *eventRepo) ListAll(ctx context.Context) ([]Event, error) {
	defer observeDB(ctx, "db.events.list_all")()
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at`)
	if err != nil {
		return nil, unavailable(err)
	}
	return collectEvents(rows)
}

func (r *eventRepo) ListByCreator(ctx context.Context, adminID string) ([]Event, error) {
	defer observeDB(ctx, "db.events.list_by_creator")()
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE created_by = $1 ORDER BY created_at`, adminID)
	if err != nil {
		return nil, unavailable(err)
	}
	return collectEvents(rows)
}

func (r *eventRepo) Delete(ctx context.Context, adminID, id string) error {
	defer observeDB(ctx, "db.events.delete")()
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $2 AND created_by = $1`, adminID, id)
	if err != nil {
		return unavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
