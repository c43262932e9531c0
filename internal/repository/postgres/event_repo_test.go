package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"joinify/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	dateTime := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WithArgs("Go Meetup", "Monthly meetup", dateTime, "Community Hall", 50, "org-1", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID: "ev-uuid-1",
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			event := &domain.Event{
				Title:       "Go Meetup",
				Description: "Monthly meetup",
				DateTime:    dateTime,
				Location:    "Community Hall",
				MaxCapacity: 50,
				OrganizerID: "org-1",
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			err = repo.Create(ctx, event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	dateTime := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, title, description, date_time, location, max_capacity, organizer_id, created_at, updated_at`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "date_time", "location", "max_capacity", "organizer_id", "created_at", "updated_at"}).
				AddRow("ev-1", "Go Meetup", "Monthly meetup", dateTime, "Community Hall", 50, "org-1", now, now))

		repo := NewEventRepository(db)
		event, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "Go Meetup", event.Title)
		require.Equal(t, 50, event.MaxCapacity)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, title, description, date_time, location, max_capacity, organizer_id, created_at, updated_at`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "ev-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	dateTime := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, title, description, date_time, location, max_capacity, organizer_id, created_at, updated_at`).
		WithArgs(20, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "date_time", "location", "max_capacity", "organizer_id", "created_at", "updated_at"}).
			AddRow("ev-1", "Go Meetup", "", dateTime, "Hall A", 50, "org-1", now, now).
			AddRow("ev-2", "Rust Meetup", "", dateTime.Add(time.Hour), "Hall B", 30, "org-2", now, now))

	repo := NewEventRepository(db)
	events, err := repo.List(ctx, domain.PaginationParams{Page: 2, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "ev-1", events[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	// rsvps reference events without ON DELETE, so the event delete only
	// succeeds if the same transaction removes the reservation rows first.
	t.Run("removes event and its rsvps", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM rsvps WHERE event_id = \$1`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		require.NoError(t, repo.Delete(ctx, "ev-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM rsvps WHERE event_id = \$1`).
			WithArgs("ev-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("ev-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "ev-missing"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rsvp delete failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM rsvps WHERE event_id = \$1`).
			WithArgs("ev-1").
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		repo := NewEventRepository(db)
		require.Error(t, repo.Delete(ctx, "ev-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
