package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"joinify/internal/domain"
)

const uniqueViolation = "23505"

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{
		DB: db,
	}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, salt, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.Salt, u.Role, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if pqErr.Constraint == "users_email_key" {
				return domain.ErrDuplicateEmail
			}
			return domain.ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *userRepository) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, salt, role, created_at, updated_at
		FROM users
		WHERE ` + column + ` = $1
	`
	u := &domain.User{}
	err := r.DB.QueryRowContext(ctx, query, value).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Salt, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, salt, role, created_at, updated_at
		FROM users
		WHERE role = $1
		ORDER BY username ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, role)
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
