package domain

import (
	"context"
	"time"
)

// Role is an application role assigned to a user at signup.
type Role string

const (
	RoleOrganizer Role = "ORGANIZER"
	RoleAttendee  Role = "ATTENDEE"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleOrganizer || r == RoleAttendee
}

// User represents a registered user.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is set by the repository on create.
func NewUser(username, email, passwordHash, salt string, role Role, createdAt, updatedAt time.Time) *User {
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		Role:         role,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, username string, role Role, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user's identity.
type TokenVerifier interface {
	Verify(token string) (userID string, role Role, err error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)
}

// AuthResult bundles the token issued at login with the authenticated user.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// AuthService defines signup and login operations. Authorization itself is
// performed by the delivery layer from the verified token claims.
type AuthService interface {
	SignUp(ctx context.Context, username, email, password string, role Role) (*User, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
}

// UserService defines user profile lookups.
type UserService interface {
	GetByID(ctx context.Context, id string) (*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)
}
