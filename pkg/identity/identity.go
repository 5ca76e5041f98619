// Package identity defines the authenticated principal the post-login
// pipeline operates on.
package identity

import (
	"github.com/google/uuid"

	"github.com/loginwatch/loginwatch/pkg/privilege"
)

// Identity is the capability-bearing view of an authenticated principal.
// Any authentication result that can supply a login name and a privilege set
// qualifies; richer principals additionally implement Subject.
type Identity interface {
	// LoginName returns the principal's login name. Implementations without
	// a richer identity return a generic account identifier.
	LoginName() string
	// Privileges returns the privilege labels granted at authentication time.
	Privileges() privilege.Set
}

// Subject is an Identity backed by a stored user account. Device
// verification needs the stable user ID and a notification address, so it
// only runs for principals that implement this interface.
type Subject interface {
	Identity
	ID() uuid.UUID
	Email() string
}

// Authenticated is the concrete principal produced by the IAM service after
// a successful credential check.
type Authenticated struct {
	UserID    uuid.UUID
	UserEmail string
	Privs     privilege.Set
}

func (a Authenticated) LoginName() string {
	if a.UserEmail == "" {
		return a.UserID.String()
	}
	return a.UserEmail
}

func (a Authenticated) Privileges() privilege.Set {
	return a.Privs
}

func (a Authenticated) ID() uuid.UUID {
	return a.UserID
}

func (a Authenticated) Email() string {
	return a.UserEmail
}
