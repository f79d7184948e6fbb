package middleware

import (
	"context"
	"net/http"
)

// Authenticator is the minimal auth check the gate needs.
// *rpc.Client satisfies it.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
}

// RequireAuth returns a middleware that redirects unauthenticated visitors
// to loginPath. The check asks the backend on every request; there is no
// local session state to invalidate, and a failed check is treated the same
// as an expired session.
func RequireAuth(auth Authenticator, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.IsAuthenticated(r.Context()) {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
