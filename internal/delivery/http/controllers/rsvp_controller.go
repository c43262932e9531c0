package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"joinify/internal/delivery/http/helpers"
	"joinify/internal/delivery/http/middleware"
	"joinify/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// writeRSVPError maps domain errors to the API error envelope. Capacity and
// duplicate conflicts get distinct codes so clients can branch on the cause.
func (c *RSVPController) writeRSVPError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateRSVP):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeDuplicateRSVP, err.Error())
	case errors.Is(err, domain.ErrEventFull):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeEventFull, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}

// eventIDFromPath validates the eventID path segment. Returns "" after
// writing a 400 when the segment is missing or malformed.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) string {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return ""
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return ""
	}
	return eventID
}

// Reserve godoc
// @Summary Reserve a spot for an event
// @Description Admits the authenticated user into the event. Fails with 409 (event_full) when the event is at capacity and 409 (duplicate_rsvp) when the user already holds a live RSVP.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (e.g. past event)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_full or duplicate_rsvp"
// @Router /events/{eventID}/rsvp [post]
func (c *RSVPController) Reserve(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	rsvp, err := c.Service.Reserve(r.Context(), userID, eventID)
	if err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, rsvp)
}

// Cancel godoc
// @Summary Cancel the authenticated user's RSVP for an event
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "RSVP cancelled"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rsvp [delete]
func (c *RSVPController) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Cancel(r.Context(), userID, eventID); err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStatusRequest is the request body for PATCH /events/{eventID}/rsvp.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// Validate implements helpers.Validator.
func (req *SetStatusRequest) Validate() []string {
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		return []string{"status is required"}
	}
	if !domain.RSVPStatus(status).Valid() {
		return []string{"status must be PENDING, CONFIRMED, or CANCELLED"}
	}
	req.Status = status
	return nil
}

// SetStatus godoc
// @Summary Overwrite the authenticated user's RSVP status
// @Description Transitions into CONFIRMED re-run the capacity check and may fail with 409 (event_full).
// @Tags rsvp
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.SetStatusRequest true "New status"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_full"
// @Router /events/{eventID}/rsvp [patch]
func (c *RSVPController) SetStatus(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req SetStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	rsvp, err := c.Service.SetStatus(r.Context(), userID, eventID, domain.RSVPStatus(req.Status))
	if err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// RSVPStatusResponse is the response body for GET /events/{eventID}/rsvp.
type RSVPStatusResponse struct {
	Status   string `json:"status,omitempty"`
	Reserved bool   `json:"reserved"`
}

// GetStatus godoc
// @Summary Get the authenticated user's RSVP status for an event
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{eventID}/rsvp [get]
func (c *RSVPController) GetStatus(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	status, reserved, err := c.Service.GetStatus(r.Context(), userID, eventID)
	if err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RSVPStatusResponse{Status: string(status), Reserved: reserved})
}

// ListForEvent godoc
// @Summary List all RSVPs for an event
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{eventID}/rsvps [get]
func (c *RSVPController) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	rsvps, err := c.Service.ListForEvent(r.Context(), eventID)
	if err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvps)
}

// PendingForEvent godoc
// @Summary List pending RSVPs for an event in FIFO order
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{eventID}/rsvps/pending [get]
func (c *RSVPController) PendingForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	rsvps, err := c.Service.PendingForEvent(r.Context(), eventID)
	if err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvps)
}

// ConfirmedAttendees godoc
// @Summary List confirmed attendees for an event
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{eventID}/attendees [get]
func (c *RSVPController) ConfirmedAttendees(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	users, err := c.Service.ConfirmedAttendees(r.Context(), eventID)
	if err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// Counts godoc
// @Summary Capacity projection for an event
// @Description Returns confirmed count, total count, available spots, and the at-capacity flag.
// @Tags rsvp
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/counts [get]
func (c *RSVPController) Counts(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	counts, err := c.Service.Counts(r.Context(), eventID)
	if err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, counts)
}

// PromotePending godoc
// @Summary Promote pending RSVPs into free capacity
// @Description Confirms PENDING RSVPs in arrival order while spots remain, then returns the confirmed set. Idempotent.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rsvps/promote [post]
func (c *RSVPController) PromotePending(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	promoted, err := c.Service.PromotePending(r.Context(), eventID)
	if err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, promoted)
}

// ListMine godoc
// @Summary List the authenticated user's RSVPs
// @Description The filter query parameter may be "upcoming" or "past"; omitted means all.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param filter query string false "upcoming or past"
// @Success 200 {object} helpers.APIResponse
// @Router /me/rsvps [get]
func (c *RSVPController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var (
		rsvps []*domain.RSVP
		err   error
	)
	switch r.URL.Query().Get("filter") {
	case "upcoming":
		rsvps, err = c.Service.UpcomingForUser(r.Context(), userID)
	case "past":
		rsvps, err = c.Service.PastForUser(r.Context(), userID)
	default:
		rsvps, err = c.Service.ListForUser(r.Context(), userID)
	}
	if err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvps)
}
