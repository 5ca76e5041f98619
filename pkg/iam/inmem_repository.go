package iam

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// InMemRepository implements Repository using in-memory maps. Intended for
// development and tests.
type InMemRepository struct {
	mu         sync.Mutex
	privileges map[string]Privilege
	roles      map[string]Role
	users      map[string]User // keyed by lowercased email
}

// NewInMemRepository creates a new in-memory IAM repository.
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		privileges: make(map[string]Privilege),
		roles:      make(map[string]Role),
		users:      make(map[string]User),
	}
}

func (r *InMemRepository) GetPrivilegeByName(ctx context.Context, name string) (Privilege, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	privilege, ok := r.privileges[name]
	if !ok {
		return Privilege{}, ErrPrivilegeNotFound
	}
	return privilege, nil
}

func (r *InMemRepository) CreatePrivilege(ctx context.Context, privilege Privilege) (Privilege, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.privileges[privilege.Name]; ok {
		return existing, nil
	}
	if privilege.ID == uuid.Nil {
		privilege.ID = uuid.New()
	}
	r.privileges[privilege.Name] = privilege
	return privilege, nil
}

func (r *InMemRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role, ok := r.roles[name]
	if !ok {
		return Role{}, ErrRoleNotFound
	}
	return role, nil
}

func (r *InMemRepository) SaveRole(ctx context.Context, role Role) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.roles[role.Name]; ok {
		role.ID = existing.ID
	} else if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	r.roles[role.Name] = role
	return role, nil
}

func (r *InMemRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[strings.ToLower(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemRepository) SaveUser(ctx context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if existing, ok := r.users[key]; ok {
		user.ID = existing.ID
	} else if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[key] = user
	return user, nil
}
