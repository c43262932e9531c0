package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"joinify/internal/delivery/http/helpers"
	"joinify/internal/delivery/http/middleware"
	"joinify/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *EventController) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"date_time"`
	Location    string    `json:"location"`
	MaxCapacity int       `json:"max_capacity"`
}

// Validate implements helpers.Validator.
func (req *CreateEventRequest) Validate() []string {
	var errs []string
	if req.Title == "" {
		errs = append(errs, "title is required")
	}
	if req.DateTime.IsZero() {
		errs = append(errs, "date_time is required")
	}
	if req.Location == "" {
		errs = append(errs, "location is required")
	}
	if req.MaxCapacity < 1 {
		errs = append(errs, "max_capacity must be at least 1")
	}
	return errs
}

// Create godoc
// @Summary Create an event
// @Description Publishes a capacity-bounded event. Requires the ORGANIZER role.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event details"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	event, err := c.Service.Create(r.Context(), req.Title, req.Description, req.DateTime, req.Location, req.MaxCapacity, userID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// List godoc
// @Summary List events
// @Description Paginated via page and page_size query parameters.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.List(r.Context(), helpers.ParsePagination(r))
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListUpcoming godoc
// @Summary List upcoming events
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /events/upcoming [get]
func (c *EventController) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListUpcoming(r.Context())
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListPast godoc
// @Summary List past events
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /events/past [get]
func (c *EventController) ListPast(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListPast(r.Context())
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// Get godoc
// @Summary Get a single event
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	event, err := c.Service.GetByID(r.Context(), eventID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListMine godoc
// @Summary List events organized by the authenticated user
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Router /me/events [get]
func (c *EventController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListByOrganizerID(r.Context(), userID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// Delete godoc
// @Summary Delete an event
// @Description Cancels all live RSVPs for the event, then deletes it. Only the owning organizer may delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "Event deleted"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Delete(r.Context(), eventID, userID); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
