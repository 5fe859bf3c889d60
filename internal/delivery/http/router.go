package http

import (
	"log/slog"
	"net/http"

	"eventmanager/internal/delivery/http/controllers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	eventController *controllers.EventController,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)
	admin := middleware.RequireRole(domain.RoleAdmin)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Users
	mux.HandleFunc("GET /users/me", auth(userController.GetMe))
	mux.HandleFunc("GET /users/{userID}/events", eventController.ListUserEvents)

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/confirmed", eventController.ListConfirmed)
	mux.HandleFunc("GET /events/unconfirmed", eventController.ListUnconfirmed)
	mux.HandleFunc("GET /events/search", eventController.SearchEvents)
	mux.HandleFunc("GET /events/me", auth(eventController.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEventByID)
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("PUT /events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/accept", auth(admin(eventController.AcceptEvent)))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
