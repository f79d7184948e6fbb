// Package handler implements the HTML surface of the Corsa Logbook: the
// login screen and the trips page, rendered server-side. Handlers are
// methods on Server, split into domain-specific files (auth.go, trip.go,
// export.go) that all share the same struct and its dependencies.
package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lmoreno/corsa-logbook/internal/domain"
	"github.com/lmoreno/corsa-logbook/internal/middleware"
)

// AuthService defines the auth operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". *rpc.Client
// satisfies it; tests inject a double.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	CurrentUser(ctx context.Context) *domain.User
	Logout(ctx context.Context)
	IsAuthenticated(ctx context.Context) bool
}

// TripManager defines the session operations the trip handlers depend on.
// *session.Manager satisfies it.
type TripManager interface {
	Refresh(ctx context.Context) error
	Create(ctx context.Context, trip domain.Trip) error
	Update(ctx context.Context, trip domain.Trip) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(id uuid.UUID) (domain.Trip, error)
	Trips() []domain.Trip
	Filtered(f domain.Filter) []domain.Trip
	StatsFor(f domain.Filter) domain.Stats
	Export(f domain.Filter) ([]byte, string, error)
}

// Server holds the handler dependencies.
type Server struct {
	auth  AuthService
	trips TripManager
	tmpl  *template.Template
	log   *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// tmpl must contain the "login", "trips", and "edit" templates.
func NewServer(auth AuthService, trips TripManager, tmpl *template.Template, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{auth: auth, trips: trips, tmpl: tmpl, log: log}
}

// Routes builds the router for the whole page. The trips surface sits
// behind the auth gate; the login surface and the health probe do not.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)

	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Post("/register", s.handleRegister)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.auth, "/login"))
		r.Get("/", s.handleTripsPage)
		r.Post("/trips", s.handleCreateTrip)
		r.Get("/trips/{id}/edit", s.handleEditPage)
		r.Post("/trips/{id}", s.handleUpdateTrip)
		r.Post("/trips/{id}/delete", s.handleDeleteTrip)
		r.Get("/export", s.handleExport)
	})

	return r
}

// handleHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// render executes a named template, logging rather than surfacing template
// errors: by the time rendering fails, headers are already out.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("template render failed", "template", name, "error", err)
	}
}
