package handler

import (
	"net/http"
)

// loginPageData feeds the login template. Email and Name re-fill the form
// after a failed attempt.
type loginPageData struct {
	Error string
	Email string
	Name  string
}

// handleLoginPage handles GET /login.
// An already-authenticated visitor is redirected straight to the trips
// page; the auth check is advisory, so any failure just shows the form.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.auth.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, "login", loginPageData{})
}

// handleLogin handles POST /login.
// On success the backend's session cookie is already in the rpc client's
// jar, so a plain redirect to the trips page is enough. On failure the form
// is re-rendered with the backend's message.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	if _, err := s.auth.Login(r.Context(), email, password); err != nil {
		s.render(w, "login", loginPageData{Error: err.Error(), Email: email})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRegister handles POST /register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")
	name := r.FormValue("name")

	if _, err := s.auth.Register(r.Context(), email, password, name); err != nil {
		s.render(w, "login", loginPageData{Error: err.Error(), Email: email, Name: name})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout handles POST /logout. Logout is best-effort: whatever the
// backend says, the visitor lands back on the login screen.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
