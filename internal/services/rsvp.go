package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"joinify/internal/domain"
)

type rsvpService struct {
	userRepo  domain.UserRepository
	eventRepo domain.EventRepository
	rsvpRepo  domain.RSVPRepository
	mailer    domain.Mailer
	renderer  domain.EmailTemplateRenderer
	logger    *slog.Logger
}

// NewRSVPService creates an RSVPService. Mailer and renderer may be nil, in
// which case no confirmation emails are sent.
func NewRSVPService(
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	rsvpRepo domain.RSVPRepository,
	mailer domain.Mailer,
	renderer domain.EmailTemplateRenderer,
	logger *slog.Logger,
) domain.RSVPService {
	return &rsvpService{
		userRepo:  userRepo,
		eventRepo: eventRepo,
		rsvpRepo:  rsvpRepo,
		mailer:    mailer,
		renderer:  renderer,
		logger:    logger,
	}
}

// Reserve admits a user into an event. The repository performs the duplicate
// check, the capacity check, and the insert as one atomic unit; the service
// validates the immutable facts (user exists, event exists, event is in the
// future) beforehand.
func (s *rsvpService) Reserve(ctx context.Context, userID, eventID string) (*domain.RSVP, error) {
	if userID == "" || eventID == "" {
		return nil, fmt.Errorf("%w: user ID and event ID are required", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if !event.DateTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: cannot RSVP to past events", domain.ErrInvalidInput)
	}

	rsvp, err := s.rsvpRepo.Reserve(ctx, userID, eventID, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) ||
			errors.Is(err, domain.ErrDuplicateRSVP) ||
			errors.Is(err, domain.ErrEventFull) {
			return nil, err
		}
		return nil, fmt.Errorf("reserve: %w", err)
	}

	s.sendConfirmation(ctx, user, event)
	return rsvp, nil
}

func (s *rsvpService) Cancel(ctx context.Context, userID, eventID string) error {
	if userID == "" || eventID == "" {
		return fmt.Errorf("%w: user ID and event ID are required", domain.ErrInvalidInput)
	}
	if err := s.rsvpRepo.Cancel(ctx, userID, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("cancel rsvp: %w", err)
	}
	return nil
}

func (s *rsvpService) SetStatus(ctx context.Context, userID, eventID string, status domain.RSVPStatus) (*domain.RSVP, error) {
	if userID == "" || eventID == "" {
		return nil, fmt.Errorf("%w: user ID and event ID are required", domain.ErrInvalidInput)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown RSVP status %q", domain.ErrInvalidInput, status)
	}
	rsvp, err := s.rsvpRepo.SetStatus(ctx, userID, eventID, status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrEventFull) {
			return nil, err
		}
		return nil, fmt.Errorf("set rsvp status: %w", err)
	}
	return rsvp, nil
}

func (s *rsvpService) GetStatus(ctx context.Context, userID, eventID string) (domain.RSVPStatus, bool, error) {
	rsvp, err := s.rsvpRepo.GetLive(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get rsvp: %w", err)
	}
	return rsvp.Status, true, nil
}

func (s *rsvpService) HasReserved(ctx context.Context, userID, eventID string) (bool, error) {
	_, ok, err := s.GetStatus(ctx, userID, eventID)
	return ok, err
}

func (s *rsvpService) ListForEvent(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	return s.rsvpRepo.ListByEvent(ctx, eventID)
}

func (s *rsvpService) ConfirmedAttendees(ctx context.Context, eventID string) ([]*domain.User, error) {
	return s.rsvpRepo.ListConfirmedUsersByEvent(ctx, eventID)
}

func (s *rsvpService) PendingForEvent(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	return s.rsvpRepo.ListPendingByEvent(ctx, eventID)
}

func (s *rsvpService) ListForUser(ctx context.Context, userID string) ([]*domain.RSVP, error) {
	return s.rsvpRepo.ListByUser(ctx, userID)
}

func (s *rsvpService) UpcomingForUser(ctx context.Context, userID string) ([]*domain.RSVP, error) {
	return s.rsvpRepo.ListUpcomingByUser(ctx, userID, time.Now())
}

func (s *rsvpService) PastForUser(ctx context.Context, userID string) ([]*domain.RSVP, error) {
	return s.rsvpRepo.ListPastByUser(ctx, userID, time.Now())
}

// Counts returns the capacity projection for an event from the latest
// committed state. Admission decisions never use this path; they re-read
// inside their own transaction.
func (s *rsvpService) Counts(ctx context.Context, eventID string) (*domain.EventCounts, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	confirmed, total, err := s.rsvpRepo.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count rsvps: %w", err)
	}
	available := event.MaxCapacity - confirmed
	if available < 0 {
		available = 0
	}
	return &domain.EventCounts{
		Confirmed:  confirmed,
		Total:      total,
		Available:  available,
		AtCapacity: confirmed >= event.MaxCapacity,
	}, nil
}

func (s *rsvpService) PromotePending(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event ID is required", domain.ErrInvalidInput)
	}
	promoted, err := s.rsvpRepo.PromotePending(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("promote pending rsvps: %w", err)
	}
	return promoted, nil
}

// sendConfirmation emails the attendee after a successful admission. Failures
// are logged, never surfaced; the reservation is already committed.
func (s *rsvpService) sendConfirmation(ctx context.Context, user *domain.User, event *domain.Event) {
	if s.mailer == nil || s.renderer == nil {
		return
	}
	subject, html, text, err := s.renderer.Render("rsvp_confirmation", map[string]string{
		"Username":      user.Username,
		"EventTitle":    event.Title,
		"EventDateTime": event.DateTime.Format("Monday, 2 January 2006 at 15:04 MST"),
		"EventLocation": event.Location,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "render confirmation email", "event_id", event.ID, "err", err)
		return
	}
	if err := s.mailer.Send(user.Email, subject, html, text); err != nil {
		s.logger.ErrorContext(ctx, "send confirmation email", "event_id", event.ID, "err", err)
	}
}
