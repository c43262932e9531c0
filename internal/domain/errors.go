package domain

import "errors"

// Sentinel errors returned by services and repositories. Callers branch on
// these with errors.Is; the HTTP layer maps each to a status code and a
// machine-readable error code.
var (
	// ErrNotFound is returned when a referenced user, event, or RSVP does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned for malformed identifiers or business-rule
	// violations such as reserving a spot for an event that already happened.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateRSVP is returned when the user already holds a live
	// (non-cancelled) RSVP for the event.
	ErrDuplicateRSVP = errors.New("user has already RSVP'd to this event")

	// ErrEventFull is returned when the confirmed count has reached the
	// event's maximum capacity.
	ErrEventFull = errors.New("event is at full capacity")

	// ErrForbidden is returned when the caller lacks the role required for
	// the operation.
	ErrForbidden = errors.New("forbidden")

	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
