package iam

import (
	"context"
	"errors"
)

var (
	ErrPrivilegeNotFound = errors.New("privilege not found")
	ErrRoleNotFound      = errors.New("role not found")
	ErrUserNotFound      = errors.New("user not found")
)

// Repository is the persistence boundary for users, roles and privileges.
type Repository interface {
	GetPrivilegeByName(ctx context.Context, name string) (Privilege, error)
	CreatePrivilege(ctx context.Context, privilege Privilege) (Privilege, error)

	GetRoleByName(ctx context.Context, name string) (Role, error)
	// SaveRole creates the role if missing and replaces its privilege set.
	SaveRole(ctx context.Context, role Role) (Role, error)

	GetUserByEmail(ctx context.Context, email string) (User, error)
	// SaveUser creates the user if missing and replaces its role set.
	SaveUser(ctx context.Context, user User) (User, error)
}
