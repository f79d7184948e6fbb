package domain

import "github.com/google/uuid"

// User is the authenticated account returned by the backend's auth
// procedures. The backend owns the account; the page only ever reads it.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name,omitempty"`
}
