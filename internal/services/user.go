package services

import (
	"context"
	"errors"
	"fmt"

	"joinify/internal/domain"
)

type userService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a UserService with the given repository.
func NewUserService(userRepo domain.UserRepository) domain.UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user ID is required", domain.ErrInvalidInput)
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	return s.userRepo.ListByRole(ctx, role)
}
