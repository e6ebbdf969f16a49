package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/eventerx/eventerx-api/internal/authz"
	"github.com/eventerx/eventerx-api/internal/handlers"
)

// NewRouter wires the API surface. Registration and invite preview are
// public; everything else sits behind the JWT middleware, with role
// checks in (or in front of) the handlers.
func NewRouter(
	auth *handlers.AuthHandler,
	school *handlers.SchoolHandler,
	invite *handlers.InviteHandler,
	register *handlers.RegistrationHandler,
	staff *handlers.StaffHandler,
	student *handlers.StudentHandler,
	event *handlers.EventHandler,
	commission *handlers.CommissionHandler,
	team *handlers.TeamHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public endpoints
	router.HandleFunc("/api/login", auth.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/schools", school.RegisterSchool).Methods(http.MethodPost)
	router.HandleFunc("/api/invites/{purpose}/{code}", invite.PreviewInvite).Methods(http.MethodGet)
	router.HandleFunc("/api/register/staff", register.RegisterStaff).Methods(http.MethodPost)
	router.HandleFunc("/api/register/student", register.RegisterStudent).Methods(http.MethodPost)
	router.HandleFunc("/api/register/attendee", register.RegisterAttendee).Methods(http.MethodPost)

	// Authenticated endpoints
	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTMiddleware)

	api.HandleFunc("/logout", auth.Logout).Methods(http.MethodPost)

	api.HandleFunc("/schools", school.ListSchools).Methods(http.MethodGet)
	api.HandleFunc("/schools/{schoolID}", school.GetSchool).Methods(http.MethodGet)
	api.HandleFunc("/schools/{schoolID}", school.DeleteSchool).Methods(http.MethodDelete)

	api.HandleFunc("/invites/{purpose}", invite.CreateInvite).Methods(http.MethodPost)

	// Roster listings carry no resource id, so the role check is the
	// whole check and lives in front of the handler.
	management := authz.RequireRole(authz.ManagementRoles...)
	api.Handle("/staff", management(http.HandlerFunc(staff.ListStaff))).Methods(http.MethodGet)
	api.HandleFunc("/staff/{matricule}", staff.GetStaffMember).Methods(http.MethodGet)
	api.HandleFunc("/staff/{matricule}", staff.DeleteStaffMember).Methods(http.MethodDelete)
	api.HandleFunc("/staff/{matricule}/promote", staff.PromoteStaffMember).Methods(http.MethodPost)

	api.Handle("/students", management(http.HandlerFunc(student.ListStudents))).Methods(http.MethodGet)
	api.HandleFunc("/students/{matricule}", student.DeleteStudent).Methods(http.MethodDelete)

	api.HandleFunc("/events", event.ListEvents).Methods(http.MethodGet)
	api.HandleFunc("/events", event.CreateEvent).Methods(http.MethodPost)
	api.HandleFunc("/events/{eventID}", event.GetEvent).Methods(http.MethodGet)
	api.HandleFunc("/events/{eventID}", event.UpdateEvent).Methods(http.MethodPut)
	api.HandleFunc("/events/{eventID}", event.DeleteEvent).Methods(http.MethodDelete)

	api.HandleFunc("/events/{eventID}/commissions", commission.ListCommissions).Methods(http.MethodGet)
	api.HandleFunc("/events/{eventID}/commissions", commission.CreateCommission).Methods(http.MethodPost)

	api.HandleFunc("/teams", team.ListTeams).Methods(http.MethodGet)
	api.HandleFunc("/teams", team.CreateTeam).Methods(http.MethodPost)
	api.HandleFunc("/teams/{teamID}", team.DeleteTeam).Methods(http.MethodDelete)

	return router
}
