package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"joinify/internal/delivery/http/controllers"
	"joinify/internal/delivery/http/middleware"
	"joinify/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	authController *controllers.AuthController,
	userController *controllers.UserController,
	eventController *controllers.EventController,
	rsvpController *controllers.RSVPController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier)
	organizer := middleware.RequireRole(domain.RoleOrganizer)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("POST /events", auth(organizer(eventController.Create)))
	mux.HandleFunc("GET /events", eventController.List)
	mux.HandleFunc("GET /events/upcoming", eventController.ListUpcoming)
	mux.HandleFunc("GET /events/past", eventController.ListPast)
	mux.HandleFunc("GET /events/{eventID}", eventController.Get)
	mux.HandleFunc("DELETE /events/{eventID}", auth(organizer(eventController.Delete)))

	// RSVPs
	mux.HandleFunc("POST /events/{eventID}/rsvp", auth(rsvpController.Reserve))
	mux.HandleFunc("GET /events/{eventID}/rsvp", auth(rsvpController.GetStatus))
	mux.HandleFunc("PATCH /events/{eventID}/rsvp", auth(rsvpController.SetStatus))
	mux.HandleFunc("DELETE /events/{eventID}/rsvp", auth(rsvpController.Cancel))
	mux.HandleFunc("GET /events/{eventID}/rsvps", auth(organizer(rsvpController.ListForEvent)))
	mux.HandleFunc("GET /events/{eventID}/rsvps/pending", auth(organizer(rsvpController.PendingForEvent)))
	mux.HandleFunc("POST /events/{eventID}/rsvps/promote", auth(organizer(rsvpController.PromotePending)))
	mux.HandleFunc("GET /events/{eventID}/attendees", auth(rsvpController.ConfirmedAttendees))
	mux.HandleFunc("GET /events/{eventID}/counts", rsvpController.Counts)

	// Users
	mux.HandleFunc("GET /users", auth(organizer(userController.ListByRole)))

	// Authenticated user's own resources
	mux.HandleFunc("GET /me", auth(userController.Me))
	mux.HandleFunc("GET /me/events", auth(eventController.ListMine))
	mux.HandleFunc("GET /me/rsvps", auth(rsvpController.ListMine))

	// Health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
