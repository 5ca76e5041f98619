package iam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/loginwatch/loginwatch/pkg/identity"
	"github.com/loginwatch/loginwatch/pkg/privilege"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user is disabled")
)

// Service verifies credentials and produces the authenticated principal the
// post-login pipeline consumes.
type Service struct {
	repository Repository
}

// NewService creates an IAM service over the given repository.
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// Authenticate checks email and password against the store and returns the
// principal with its aggregated privilege set. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (identity.Authenticated, error) {
	user, err := s.repository.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			slog.Debug("Unknown user", "email", email)
			return identity.Authenticated{}, ErrInvalidCredentials
		}
		return identity.Authenticated{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Debug("Password mismatch", "email", email)
		return identity.Authenticated{}, ErrInvalidCredentials
	}

	if !user.Enabled {
		return identity.Authenticated{}, ErrUserDisabled
	}

	return identity.Authenticated{
		UserID:    user.ID,
		UserEmail: user.Email,
		Privs:     privilegesOf(user),
	}, nil
}

// privilegesOf aggregates the privilege labels of all the user's roles.
func privilegesOf(user User) privilege.Set {
	set := privilege.NewSet()
	for _, role := range user.Roles {
		for _, p := range role.Privileges {
			set[p.Name] = struct{}{}
		}
	}
	return set
}
