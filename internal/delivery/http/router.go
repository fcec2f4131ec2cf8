package http

import (
	"log/slog"
	"net/http"

	"districtevents/internal/delivery/http/controllers"
	"districtevents/internal/delivery/http/helpers"
	"districtevents/internal/delivery/http/middleware"
	"districtevents/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Events        *controllers.EventController
	Registrations *controllers.RegistrationController
	Churches      *controllers.ChurchController
	Invitations   *controllers.InvitationController
	Auth          *controllers.AuthController
	Users         *controllers.UserController
	Overview      *controllers.OverviewController
}

// NewRouter initializes the HTTP router with all application routes.
// Routes under /admin require a valid Bearer token; church, invitation and user role routes also require a county admin.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)
	county := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireCountyAdmin(next))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public
	mux.HandleFunc("GET /events", c.Events.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", c.Events.GetEvent)
	mux.HandleFunc("POST /events/{eventID}/registrations", c.Registrations.Register)
	mux.HandleFunc("GET /churches", c.Churches.ListChurches)
	mux.HandleFunc("GET /churches/{churchID}", c.Churches.GetChurch)
	mux.HandleFunc("GET /invitations/lookup", c.Invitations.LookupInvitation)
	mux.HandleFunc("POST /invitations/accept", c.Invitations.AcceptInvitation)

	// Auth
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /auth/me", auth(c.Auth.Me))

	// Admin: events and registrations, scoped per church by the services
	mux.HandleFunc("GET /admin/events", auth(c.Events.ListManagedEvents))
	mux.HandleFunc("POST /admin/events", auth(c.Events.CreateEvent))
	mux.HandleFunc("GET /admin/events/{eventID}", auth(c.Events.GetManagedEvent))
	mux.HandleFunc("PATCH /admin/events/{eventID}", auth(c.Events.UpdateEvent))
	mux.HandleFunc("PUT /admin/events/{eventID}/capacity", auth(c.Events.UpdateEventCapacity))
	mux.HandleFunc("DELETE /admin/events/{eventID}", auth(c.Events.DeleteEvent))
	mux.HandleFunc("GET /admin/events/{eventID}/registrations", auth(c.Registrations.ListEventRegistrations))
	mux.HandleFunc("GET /admin/registrations", auth(c.Registrations.ListManagedRegistrations))
	mux.HandleFunc("GET /admin/registrations/{registrationID}", auth(c.Registrations.GetRegistration))
	mux.HandleFunc("PUT /admin/registrations/{registrationID}/check-in", auth(c.Registrations.CheckIn))
	mux.HandleFunc("POST /admin/registrations/{registrationID}/cancel", auth(c.Registrations.CancelRegistration))

	mux.HandleFunc("GET /admin/overview", auth(c.Overview.GetOverview))

	// Admin: county only
	mux.HandleFunc("POST /admin/churches", county(c.Churches.CreateChurch))
	mux.HandleFunc("PUT /admin/churches/{churchID}", county(c.Churches.UpdateChurch))
	mux.HandleFunc("DELETE /admin/churches/{churchID}", county(c.Churches.DeleteChurch))
	mux.HandleFunc("GET /admin/invitations", county(c.Invitations.ListInvitations))
	mux.HandleFunc("POST /admin/invitations", county(c.Invitations.CreateInvitation))
	mux.HandleFunc("GET /admin/users", county(c.Users.ListUsers))
	mux.HandleFunc("PUT /admin/users/{userID}/role", county(c.Users.UpdateUserRole))
	mux.HandleFunc("DELETE /admin/users/{userID}/role", county(c.Users.RemoveUserRole))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
