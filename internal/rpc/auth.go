package rpc

import (
	"context"

	"github.com/google/uuid"

	"github.com/lmoreno/corsa-logbook/internal/domain"
)

// userWire is the backend's user shape.
type userWire struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name,omitempty"`
}

func (w userWire) toDomain() domain.User {
	return domain.User{ID: w.ID, Email: w.Email, Name: w.Name}
}

type registerInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and establishes a session.
// On failure the error carries the backend's message, or "Registration
// failed" when the backend supplies none. The session cookie set by the
// backend lands in the client's jar as a side effect.
func (c *Client) Register(ctx context.Context, email, password, name string) (domain.User, error) {
	var w userWire
	in := registerInput{Email: email, Password: password, Name: name}
	if err := c.post(ctx, "auth.register", in, &w, "Registration failed"); err != nil {
		return domain.User{}, err
	}
	return w.toDomain(), nil
}

// Login authenticates an existing account and establishes a session.
// The fallback failure message is "Login failed".
func (c *Client) Login(ctx context.Context, email, password string) (domain.User, error) {
	var w userWire
	in := loginInput{Email: email, Password: password}
	if err := c.post(ctx, "auth.login", in, &w, "Login failed"); err != nil {
		return domain.User{}, err
	}
	return w.toDomain(), nil
}

// CurrentUser returns the authenticated user, or nil on any non-success
// response or transport failure. Failures are swallowed deliberately: this
// call backs the passive auth gate, not user-facing error reporting, so
// they are logged at debug level and never surfaced.
func (c *Client) CurrentUser(ctx context.Context) *domain.User {
	var w userWire
	if err := c.get(ctx, "auth.me", &w, "Not authenticated"); err != nil {
		c.log.DebugContext(ctx, "current user check failed", "error", err)
		return nil
	}
	u := w.toDomain()
	return &u
}

// Logout ends the session, best-effort. Transport and backend errors are
// swallowed; the worst case is a session the backend expires on its own.
func (c *Client) Logout(ctx context.Context) {
	if err := c.post(ctx, "auth.logout", struct{}{}, nil, "Logout failed"); err != nil {
		c.log.DebugContext(ctx, "logout failed", "error", err)
	}
}

// IsAuthenticated reports whether the session currently resolves to a user.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	return c.CurrentUser(ctx) != nil
}
