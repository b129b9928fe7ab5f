// Package user holds the account model backing authentication.  VitaQuote has
// no self-service signup; operators are provisioned through the CLI, so the
// entity stays small.
package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents an operator account.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"`
	Active       bool       `json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CanLogin reports whether the account may open a session.
func (u *User) CanLogin() bool {
	return u != nil && u.Active
}
