package domain

import (
	"context"
	"time"
)

// RSVPStatus is the lifecycle state of a reservation.
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "PENDING"
	RSVPConfirmed RSVPStatus = "CONFIRMED"
	RSVPCancelled RSVPStatus = "CANCELLED"
)

// Valid reports whether the status is one of the three known states.
func (s RSVPStatus) Valid() bool {
	return s == RSVPPending || s == RSVPConfirmed || s == RSVPCancelled
}

// RSVP represents a user's reservation for an event. CreatedAt is set once at
// creation and never mutated; it is the FIFO order key for waitlist promotion.
// swagger:model RSVP
type RSVP struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	EventID   string     `json:"event_id"`
	Status    RSVPStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// EventCounts is the capacity projection for a single event.
// swagger:model EventCounts
type EventCounts struct {
	Confirmed  int  `json:"confirmed"`
	Total      int  `json:"total"`
	Available  int  `json:"available"`
	AtCapacity bool `json:"at_capacity"`
}

// RSVPRepository defines storage operations for reservations. Mutations that
// admit a reservation into CONFIRMED (Reserve, SetStatus, PromotePending) run
// inside a single transaction holding a row lock on the event, so the
// capacity check and the dependent write are one atomic unit.
type RSVPRepository interface {
	// Reserve inserts a CONFIRMED reservation if and only if the user holds
	// no live reservation for the event and the confirmed count is below the
	// event's capacity. Returns ErrNotFound, ErrDuplicateRSVP, or ErrEventFull.
	Reserve(ctx context.Context, userID, eventID string, createdAt time.Time) (*RSVP, error)
	// Cancel marks the user's live reservation CANCELLED. Returns ErrNotFound
	// if no live reservation exists.
	Cancel(ctx context.Context, userID, eventID string) error
	// SetStatus overwrites the status of the user's live reservation. A
	// transition into CONFIRMED re-runs the capacity check under the event
	// row lock and may return ErrEventFull.
	SetStatus(ctx context.Context, userID, eventID string, status RSVPStatus) (*RSVP, error)
	// PromotePending confirms PENDING reservations in created_at order while
	// capacity remains, then returns the confirmed set for the event.
	PromotePending(ctx context.Context, eventID string) ([]*RSVP, error)

	GetLive(ctx context.Context, userID, eventID string) (*RSVP, error)
	ListByEvent(ctx context.Context, eventID string) ([]*RSVP, error)
	ListPendingByEvent(ctx context.Context, eventID string) ([]*RSVP, error)
	ListConfirmedUsersByEvent(ctx context.Context, eventID string) ([]*User, error)
	ListByUser(ctx context.Context, userID string) ([]*RSVP, error)
	ListUpcomingByUser(ctx context.Context, userID string, now time.Time) ([]*RSVP, error)
	ListPastByUser(ctx context.Context, userID string, now time.Time) ([]*RSVP, error)
	// CountByEvent returns the confirmed count and the total count across
	// all statuses.
	CountByEvent(ctx context.Context, eventID string) (confirmed, total int, err error)
}

// RSVPService defines the reservation operations exposed to the delivery layer.
type RSVPService interface {
	Reserve(ctx context.Context, userID, eventID string) (*RSVP, error)
	Cancel(ctx context.Context, userID, eventID string) error
	SetStatus(ctx context.Context, userID, eventID string, status RSVPStatus) (*RSVP, error)
	// GetStatus returns the status of the user's live reservation; ok is
	// false when none exists.
	GetStatus(ctx context.Context, userID, eventID string) (status RSVPStatus, ok bool, err error)
	HasReserved(ctx context.Context, userID, eventID string) (bool, error)
	ListForEvent(ctx context.Context, eventID string) ([]*RSVP, error)
	ConfirmedAttendees(ctx context.Context, eventID string) ([]*User, error)
	PendingForEvent(ctx context.Context, eventID string) ([]*RSVP, error)
	ListForUser(ctx context.Context, userID string) ([]*RSVP, error)
	UpcomingForUser(ctx context.Context, userID string) ([]*RSVP, error)
	PastForUser(ctx context.Context, userID string) ([]*RSVP, error)
	Counts(ctx context.Context, eventID string) (*EventCounts, error)
	PromotePending(ctx context.Context, eventID string) ([]*RSVP, error)
}
