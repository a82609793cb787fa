package domain

import "github.com/google/uuid"

// User is a player identity as the backend reports it — the recruitment
// owner on the wire, and the authenticated player from /me/.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar,omitempty"`
}
