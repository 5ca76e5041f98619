// Package iam stores users, roles and privileges and verifies credentials
// at the authentication boundary.
package iam

import (
	"github.com/google/uuid"
)

// Privilege is an opaque capability label.
type Privilege struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Role groups privileges under a name.
type Role struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Privileges []Privilege `json:"privileges"`
}

// User is a stored account. PasswordHash is a bcrypt hash; the plaintext
// never leaves the authentication boundary.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Enabled      bool      `json:"enabled"`
	Roles        []Role    `json:"roles"`
}
