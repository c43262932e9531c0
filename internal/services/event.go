package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"joinify/internal/domain"
)

const (
	minTitleLen       = 3
	maxTitleLen       = 100
	maxDescriptionLen = 500
	minLocationLen    = 3
	maxLocationLen    = 100
)

type eventService struct {
	userRepo  domain.UserRepository
	eventRepo domain.EventRepository
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(userRepo domain.UserRepository, eventRepo domain.EventRepository) domain.EventService {
	return &eventService{
		userRepo:  userRepo,
		eventRepo: eventRepo,
	}
}

func (s *eventService) Create(ctx context.Context, title, description string, dateTime time.Time, location string, maxCapacity int, organizerID string) (*domain.Event, error) {
	title = strings.TrimSpace(title)
	location = strings.TrimSpace(location)

	if len(title) < minTitleLen || len(title) > maxTitleLen {
		return nil, fmt.Errorf("%w: title must be between %d and %d characters", domain.ErrInvalidInput, minTitleLen, maxTitleLen)
	}
	if len(description) > maxDescriptionLen {
		return nil, fmt.Errorf("%w: description cannot exceed %d characters", domain.ErrInvalidInput, maxDescriptionLen)
	}
	if len(location) < minLocationLen || len(location) > maxLocationLen {
		return nil, fmt.Errorf("%w: location must be between %d and %d characters", domain.ErrInvalidInput, minLocationLen, maxLocationLen)
	}
	if maxCapacity < 1 {
		return nil, fmt.Errorf("%w: maximum capacity must be at least 1", domain.ErrInvalidInput)
	}
	if !dateTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: event date must be in the future", domain.ErrInvalidInput)
	}

	organizer, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get organizer: %w", err)
	}
	if organizer.Role != domain.RoleOrganizer {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	event := domain.NewEvent(title, description, dateTime, location, maxCapacity, organizerID, now, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event ID is required", domain.ErrInvalidInput)
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, error) {
	return s.eventRepo.List(ctx, p)
}

func (s *eventService) ListUpcoming(ctx context.Context) ([]*domain.Event, error) {
	return s.eventRepo.ListUpcoming(ctx, time.Now())
}

func (s *eventService) ListPast(ctx context.Context) ([]*domain.Event, error) {
	return s.eventRepo.ListPast(ctx, time.Now())
}

func (s *eventService) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	return s.eventRepo.ListByOrganizerID(ctx, organizerID)
}

// Delete removes an event together with its reservation rows. The repository
// performs both deletes atomically, so a failure never leaves reservations
// pointing at a missing event.
func (s *eventService) Delete(ctx context.Context, id, requesterID string) error {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != requesterID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
