// Package bootstrap seeds the initial privileges, roles and demo users.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/loginwatch/loginwatch/pkg/iam"
	"github.com/loginwatch/loginwatch/pkg/privilege"
)

// Seeder performs the one-time initial data setup. Run executes at most once
// per Seeder; the individual steps are upserts, so re-entry is harmless.
type Seeder struct {
	repository iam.Repository
	once       sync.Once
}

// NewSeeder creates a seeder over the given repository.
func NewSeeder(repository iam.Repository) *Seeder {
	return &Seeder{repository: repository}
}

// Run seeds privileges, roles and demo users.
func (s *Seeder) Run(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		err = s.seed(ctx)
	})
	return err
}

func (s *Seeder) seed(ctx context.Context) error {
	read, err := s.createPrivilegeIfNotFound(ctx, privilege.Read)
	if err != nil {
		return err
	}
	write, err := s.createPrivilegeIfNotFound(ctx, privilege.Write)
	if err != nil {
		return err
	}
	changePassword, err := s.createPrivilegeIfNotFound(ctx, privilege.ChangePassword)
	if err != nil {
		return err
	}
	manager, err := s.createPrivilegeIfNotFound(ctx, privilege.Manager)
	if err != nil {
		return err
	}

	adminRole, err := s.createRoleIfNotFound(ctx, privilege.RoleAdmin, read, write, changePassword, manager)
	if err != nil {
		return err
	}
	if _, err := s.createRoleIfNotFound(ctx, privilege.RoleUser, read, changePassword); err != nil {
		return err
	}
	managerRole, err := s.createRoleIfNotFound(ctx, privilege.RoleManager, read, changePassword, manager)
	if err != nil {
		return err
	}

	if err := s.createUserIfNotFound(ctx, "test@test.com", "Test", "Test", "test", adminRole); err != nil {
		return err
	}
	if err := s.createUserIfNotFound(ctx, "manager@test.com", "John", "Doe", "manager", managerRole); err != nil {
		return err
	}

	slog.Info("Initial data seeded")
	return nil
}

func (s *Seeder) createPrivilegeIfNotFound(ctx context.Context, name string) (iam.Privilege, error) {
	existing, err := s.repository.GetPrivilegeByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	created, err := s.repository.CreatePrivilege(ctx, iam.Privilege{Name: name})
	if err != nil {
		return iam.Privilege{}, fmt.Errorf("failed to create privilege %s: %w", name, err)
	}
	return created, nil
}

func (s *Seeder) createRoleIfNotFound(ctx context.Context, name string, privileges ...iam.Privilege) (iam.Role, error) {
	role, err := s.repository.GetRoleByName(ctx, name)
	if err != nil {
		role = iam.Role{Name: name}
	}
	role.Privileges = privileges
	saved, err := s.repository.SaveRole(ctx, role)
	if err != nil {
		return iam.Role{}, fmt.Errorf("failed to save role %s: %w", name, err)
	}
	return saved, nil
}

func (s *Seeder) createUserIfNotFound(ctx context.Context, email, firstName, lastName, password string, roles ...iam.Role) error {
	user, err := s.repository.GetUserByEmail(ctx, email)
	if err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", email, err)
		}
		user = iam.User{
			Email:        email,
			FirstName:    firstName,
			LastName:     lastName,
			PasswordHash: string(hash),
			Enabled:      true,
		}
	}
	user.Roles = roles
	if _, err := s.repository.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("failed to save user %s: %w", email, err)
	}
	return nil
}
