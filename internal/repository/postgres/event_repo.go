package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"joinify/internal/domain"
)

const eventColumns = "id, title, description, date_time, location, max_capacity, organizer_id, created_at, updated_at"

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date_time, location, max_capacity, organizer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.DateTime, e.Location, e.MaxCapacity, e.OrganizerID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.DateTime, &e.Location, &e.MaxCapacity, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY date_time ASC
		LIMIT $1 OFFSET $2
	`
	return r.queryEvents(ctx, query, p.PageSize, p.Offset())
}

func (r *eventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE date_time > $1
		ORDER BY date_time ASC
	`
	return r.queryEvents(ctx, query, now)
}

func (r *eventRepository) ListPast(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE date_time < $1
		ORDER BY date_time DESC
	`
	return r.queryEvents(ctx, query, now)
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		ORDER BY date_time ASC
	`
	return r.queryEvents(ctx, query, organizerID)
}

// Delete removes the event and its reservation rows in one transaction.
// rsvps.event_id references events(id) without an ON DELETE action, so the
// child rows must go first or the event delete hits a foreign key violation.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rsvps WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete rsvps for event: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e := &domain.Event{}
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.DateTime, &e.Location, &e.MaxCapacity, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}
