package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"joinify/internal/domain"
)

const rsvpColumns = "id, user_id, event_id, status, created_at"

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{
		DB: db,
	}
}

// Reserve performs the admission decision as one transaction.
//
// Two concurrent reservations that both read confirmed = maxCapacity-1 would
// otherwise both pass the check and both insert, overbooking the event. The
// SELECT ... FOR UPDATE on the event row serialises concurrent admissions:
// the duplicate check, the capacity check, and the insert all happen while
// the lock is held, so at most maxCapacity reservations ever reach CONFIRMED.
func (r *rsvpRepository) Reserve(ctx context.Context, userID, eventID string, createdAt time.Time) (*domain.RSVP, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reserve tx: %w", err)
	}
	defer tx.Rollback()

	maxCapacity, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM rsvps WHERE user_id = $1 AND event_id = $2 AND status <> 'CANCELLED')`,
		userID, eventID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check duplicate rsvp: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateRSVP
	}

	confirmed, err := confirmedCount(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if confirmed >= maxCapacity {
		return nil, domain.ErrEventFull
	}

	rsvp := &domain.RSVP{
		UserID:    userID,
		EventID:   eventID,
		Status:    domain.RSVPConfirmed,
		CreatedAt: createdAt,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO rsvps (user_id, event_id, status, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		rsvp.UserID, rsvp.EventID, rsvp.Status, rsvp.CreatedAt,
	).Scan(&rsvp.ID)
	if err != nil {
		// The partial unique index backstops the duplicate check against a
		// racing cancel-and-re-reserve.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, domain.ErrDuplicateRSVP
		}
		return nil, fmt.Errorf("insert rsvp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reserve tx: %w", err)
	}
	return rsvp, nil
}

func (r *rsvpRepository) Cancel(ctx context.Context, userID, eventID string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE rsvps SET status = 'CANCELLED' WHERE user_id = $1 AND event_id = $2 AND status <> 'CANCELLED'`,
		userID, eventID,
	)
	if err != nil {
		return fmt.Errorf("cancel rsvp: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStatus overwrites the status of the user's live reservation. Moving
// into CONFIRMED re-runs the capacity check under the event row lock, the
// same discipline as Reserve, so the capacity invariant holds on every path
// into CONFIRMED.
func (r *rsvpRepository) SetStatus(ctx context.Context, userID, eventID string, status domain.RSVPStatus) (*domain.RSVP, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin set status tx: %w", err)
	}
	defer tx.Rollback()

	maxCapacity, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	rsvp := &domain.RSVP{}
	err = tx.QueryRowContext(ctx,
		`SELECT `+rsvpColumns+` FROM rsvps WHERE user_id = $1 AND event_id = $2 AND status <> 'CANCELLED' FOR UPDATE`,
		userID, eventID,
	).Scan(&rsvp.ID, &rsvp.UserID, &rsvp.EventID, &rsvp.Status, &rsvp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get rsvp for update: %w", err)
	}

	if status == domain.RSVPConfirmed && rsvp.Status != domain.RSVPConfirmed {
		confirmed, err := confirmedCount(ctx, tx, eventID)
		if err != nil {
			return nil, err
		}
		if confirmed >= maxCapacity {
			return nil, domain.ErrEventFull
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE rsvps SET status = $1 WHERE id = $2`, status, rsvp.ID); err != nil {
		return nil, fmt.Errorf("update rsvp status: %w", err)
	}
	rsvp.Status = status

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit set status tx: %w", err)
	}
	return rsvp, nil
}

// PromotePending confirms PENDING reservations in created_at order while
// capacity remains. It holds the same event row lock as Reserve for the
// whole pass, so promotion cannot race a concurrent admission. Returns the
// confirmed set for the event after the pass; invoking it again with no
// state change is a no-op.
func (r *rsvpRepository) PromotePending(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin promote tx: %w", err)
	}
	defer tx.Rollback()

	maxCapacity, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	confirmed, err := confirmedCount(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if confirmed < maxCapacity {
		// Earliest request wins available capacity.
		_, err = tx.ExecContext(ctx, `
			UPDATE rsvps SET status = 'CONFIRMED'
			WHERE id IN (
				SELECT id FROM rsvps
				WHERE event_id = $1 AND status = 'PENDING'
				ORDER BY created_at ASC
				LIMIT $2
			)`,
			eventID, maxCapacity-confirmed,
		)
		if err != nil {
			return nil, fmt.Errorf("promote pending rsvps: %w", err)
		}
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT `+rsvpColumns+` FROM rsvps WHERE event_id = $1 AND status = 'CONFIRMED' ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list confirmed rsvps: %w", err)
	}
	promoted, err := scanRSVPs(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit promote tx: %w", err)
	}
	return promoted, nil
}

func (r *rsvpRepository) GetLive(ctx context.Context, userID, eventID string) (*domain.RSVP, error) {
	rsvp := &domain.RSVP{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+rsvpColumns+` FROM rsvps WHERE user_id = $1 AND event_id = $2 AND status <> 'CANCELLED'`,
		userID, eventID,
	).Scan(&rsvp.ID, &rsvp.UserID, &rsvp.EventID, &rsvp.Status, &rsvp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (r *rsvpRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	return r.queryRSVPs(ctx,
		`SELECT `+rsvpColumns+` FROM rsvps WHERE event_id = $1 ORDER BY created_at ASC`,
		eventID,
	)
}

func (r *rsvpRepository) ListPendingByEvent(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	return r.queryRSVPs(ctx,
		`SELECT `+rsvpColumns+` FROM rsvps WHERE event_id = $1 AND status = 'PENDING' ORDER BY created_at ASC`,
		eventID,
	)
}

func (r *rsvpRepository) ListConfirmedUsersByEvent(ctx context.Context, eventID string) ([]*domain.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.salt, u.role, u.created_at, u.updated_at
		FROM rsvps r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1 AND r.status = 'CONFIRMED'
		ORDER BY r.created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Salt, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

func (r *rsvpRepository) ListByUser(ctx context.Context, userID string) ([]*domain.RSVP, error) {
	return r.queryRSVPs(ctx,
		`SELECT `+rsvpColumns+` FROM rsvps WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
}

func (r *rsvpRepository) ListUpcomingByUser(ctx context.Context, userID string, now time.Time) ([]*domain.RSVP, error) {
	return r.queryRSVPs(ctx, `
		SELECT r.id, r.user_id, r.event_id, r.status, r.created_at
		FROM rsvps r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1 AND r.status = 'CONFIRMED' AND e.date_time > $2
		ORDER BY e.date_time ASC`,
		userID, now,
	)
}

func (r *rsvpRepository) ListPastByUser(ctx context.Context, userID string, now time.Time) ([]*domain.RSVP, error) {
	return r.queryRSVPs(ctx, `
		SELECT r.id, r.user_id, r.event_id, r.status, r.created_at
		FROM rsvps r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1 AND r.status <> 'CANCELLED' AND e.date_time < $2
		ORDER BY e.date_time DESC`,
		userID, now,
	)
}

func (r *rsvpRepository) CountByEvent(ctx context.Context, eventID string) (int, int, error) {
	var confirmed, total int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'CONFIRMED'), COUNT(*)
		FROM rsvps
		WHERE event_id = $1`,
		eventID,
	).Scan(&confirmed, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("count rsvps: %w", err)
	}
	return confirmed, total, nil
}

func (r *rsvpRepository) queryRSVPs(ctx context.Context, query string, args ...any) ([]*domain.RSVP, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanRSVPs(rows)
}

func scanRSVPs(rows *sql.Rows) ([]*domain.RSVP, error) {
	defer rows.Close()

	var rsvps []*domain.RSVP
	for rows.Next() {
		rsvp := &domain.RSVP{}
		if err := rows.Scan(&rsvp.ID, &rsvp.UserID, &rsvp.EventID, &rsvp.Status, &rsvp.CreatedAt); err != nil {
			return nil, err
		}
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if rsvps == nil {
		rsvps = []*domain.RSVP{}
	}
	return rsvps, nil
}

// lockEvent takes a row-level lock on the event and returns its capacity.
// Every admission-path transaction locks the event row first, which both
// serialises admissions and gives all writers a single lock order.
func lockEvent(ctx context.Context, tx *sql.Tx, eventID string) (int, error) {
	var maxCapacity int
	err := tx.QueryRowContext(ctx,
		`SELECT max_capacity FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&maxCapacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("lock event row: %w", err)
	}
	return maxCapacity, nil
}

func confirmedCount(ctx context.Context, tx *sql.Tx, eventID string) (int, error) {
	var confirmed int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rsvps WHERE event_id = $1 AND status = 'CONFIRMED'`,
		eventID,
	).Scan(&confirmed)
	if err != nil {
		return 0, fmt.Errorf("count confirmed rsvps: %w", err)
	}
	return confirmed, nil
}
