package domain

import (
	"context"
	"time"
)

// Event represents a capacity-bounded event published by an organizer.
// MaxCapacity is always at least 1.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"date_time"`
	Location    string    `json:"location"`
	MaxCapacity int       `json:"max_capacity"`
	OrganizerID string    `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the repository on create.
func NewEvent(title, description string, dateTime time.Time, location string, maxCapacity int, organizerID string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		DateTime:    dateTime,
		Location:    location,
		MaxCapacity: maxCapacity,
		OrganizerID: organizerID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, p PaginationParams) ([]*Event, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]*Event, error)
	ListPast(ctx context.Context, now time.Time) ([]*Event, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	// Delete removes the event and its reservation rows in one transaction.
	Delete(ctx context.Context, id string) error
}

// EventService defines event catalog operations.
type EventService interface {
	Create(ctx context.Context, title, description string, dateTime time.Time, location string, maxCapacity int, organizerID string) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, p PaginationParams) ([]*Event, error)
	ListUpcoming(ctx context.Context) ([]*Event, error)
	ListPast(ctx context.Context) ([]*Event, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	// Delete removes the event and its reservations. Only the organizer who
	// owns the event may delete it; the delivery layer passes the
	// authenticated requester ID.
	Delete(ctx context.Context, id, requesterID string) error
}
