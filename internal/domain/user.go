// Package domain contains the core entities of the inkstand content store.
// These are plain Go structs whose JSON shape is the persisted storage layout.
package domain

import (
	"time"
)

// Role identifies what a user may do. Only the owner role may authenticate.
type Role string

// RoleOwner is the single administrative role.
const RoleOwner Role = "OWNER"

// User represents the site administrator account.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`

	// Email and Username are both accepted as login identifiers.
	Email    string `json:"email"`
	Username string `json:"username"`

	// PasswordHash is either a bcrypt hash or a hex salted SHA-256 digest.
	PasswordHash string `json:"passwordHash"`

	Role Role `json:"role"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewOwner creates an owner account stamped with now.
func NewOwner(id, email, username, passwordHash string, now time.Time) *User {
	return &User{
		ID:           id,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         RoleOwner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsOwner reports whether the user holds the administrative role.
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}
