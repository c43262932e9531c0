package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"joinify/internal/domain"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const passwordSpecials = "@#$%^&+=!*()"

type authService struct {
	userRepo  domain.UserRepository
	hasher    domain.PasswordHasher
	issuer    domain.TokenIssuer
	jwtExpiry time.Duration
}

// NewAuthService creates an AuthService with the given repository, hasher,
// and token issuer.
func NewAuthService(userRepo domain.UserRepository, hasher domain.PasswordHasher, issuer domain.TokenIssuer, jwtExpiry time.Duration) domain.AuthService {
	return &authService{
		userRepo:  userRepo,
		hasher:    hasher,
		issuer:    issuer,
		jwtExpiry: jwtExpiry,
	}
}

func (s *authService) SignUp(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return nil, fmt.Errorf("%w: username must be between %d and %d characters", domain.ErrInvalidInput, minUsernameLen, maxUsernameLen)
	}
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if !strongPassword(password) {
		return nil, fmt.Errorf("%w: password must be at least %d characters and contain a lowercase letter, an uppercase letter, a digit, and a special character", domain.ErrInvalidInput, minPasswordLen)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be ORGANIZER or ATTENDEE", domain.ErrInvalidInput)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(username, email, hash, salt, role, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) || errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID, user.Username, user.Role, s.jwtExpiry)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.AuthResult{Token: token, User: user}, nil
}

// strongPassword checks the same rule the registration form enforces:
// at least 8 characters with a lowercase letter, an uppercase letter, a
// digit, and one of @#$%^&+=!*().
func strongPassword(password string) bool {
	if len(password) < minPasswordLen {
		return false
	}
	var lower, upper, digit, special bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, c):
			special = true
		}
	}
	return lower && upper && digit && special
}
