package iam

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL.
//
// Schema:
//
//	CREATE TABLE privilege (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    name TEXT NOT NULL UNIQUE
//	);
//	CREATE TABLE role (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    name TEXT NOT NULL UNIQUE
//	);
//	CREATE TABLE role_privilege (
//	    role_id UUID NOT NULL REFERENCES role(id),
//	    privilege_id UUID NOT NULL REFERENCES privilege(id),
//	    PRIMARY KEY (role_id, privilege_id)
//	);
//	CREATE TABLE app_user (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    email TEXT NOT NULL UNIQUE,
//	    first_name TEXT NOT NULL DEFAULT '',
//	    last_name TEXT NOT NULL DEFAULT '',
//	    password_hash TEXT NOT NULL,
//	    enabled BOOLEAN NOT NULL DEFAULT TRUE
//	);
//	CREATE TABLE user_role (
//	    user_id UUID NOT NULL REFERENCES app_user(id),
//	    role_id UUID NOT NULL REFERENCES role(id),
//	    PRIMARY KEY (user_id, role_id)
//	);
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL IAM repository.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetPrivilegeByName(ctx context.Context, name string) (Privilege, error) {
	var privilege Privilege
	err := r.db.QueryRow(ctx, `SELECT id, name FROM privilege WHERE name = $1`, name).
		Scan(&privilege.ID, &privilege.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Privilege{}, ErrPrivilegeNotFound
	}
	if err != nil {
		return Privilege{}, fmt.Errorf("failed to get privilege: %w", err)
	}
	return privilege, nil
}

func (r *PostgresRepository) CreatePrivilege(ctx context.Context, privilege Privilege) (Privilege, error) {
	if privilege.ID == uuid.Nil {
		privilege.ID = uuid.New()
	}
	query := `
		INSERT INTO privilege (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`
	var created Privilege
	err := r.db.QueryRow(ctx, query, privilege.ID, privilege.Name).Scan(&created.ID, &created.Name)
	if err != nil {
		return Privilege{}, fmt.Errorf("failed to create privilege: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	var role Role
	err := r.db.QueryRow(ctx, `SELECT id, name FROM role WHERE name = $1`, name).
		Scan(&role.ID, &role.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, ErrRoleNotFound
	}
	if err != nil {
		return Role{}, fmt.Errorf("failed to get role: %w", err)
	}

	privileges, err := r.rolePrivileges(ctx, role.ID)
	if err != nil {
		return Role{}, err
	}
	role.Privileges = privileges
	return role, nil
}

func (r *PostgresRepository) SaveRole(ctx context.Context, role Role) (Role, error) {
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	query := `
		INSERT INTO role (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`
	var saved Role
	err := r.db.QueryRow(ctx, query, role.ID, role.Name).Scan(&saved.ID, &saved.Name)
	if err != nil {
		return Role{}, fmt.Errorf("failed to save role: %w", err)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM role_privilege WHERE role_id = $1`, saved.ID); err != nil {
		return Role{}, fmt.Errorf("failed to clear role privileges: %w", err)
	}
	for _, privilege := range role.Privileges {
		_, err := r.db.Exec(ctx,
			`INSERT INTO role_privilege (role_id, privilege_id) VALUES ($1, $2)`,
			saved.ID, privilege.ID)
		if err != nil {
			return Role{}, fmt.Errorf("failed to link privilege %s to role %s: %w", privilege.Name, saved.Name, err)
		}
	}
	saved.Privileges = role.Privileges
	return saved, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.db.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, password_hash, enabled
		FROM app_user
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.PasswordHash, &user.Enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}

	roles, err := r.userRoles(ctx, user.ID)
	if err != nil {
		return User{}, err
	}
	user.Roles = roles
	return user, nil
}

func (r *PostgresRepository) SaveUser(ctx context.Context, user User) (User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO app_user (id, email, first_name, last_name, password_hash, enabled)
		VALUES ($1, LOWER($2), $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			enabled = EXCLUDED.enabled
		RETURNING id, email, first_name, last_name, password_hash, enabled
	`
	var saved User
	err := r.db.QueryRow(ctx, query,
		user.ID, strings.ToLower(user.Email), user.FirstName, user.LastName, user.PasswordHash, user.Enabled,
	).Scan(&saved.ID, &saved.Email, &saved.FirstName, &saved.LastName, &saved.PasswordHash, &saved.Enabled)
	if err != nil {
		return User{}, fmt.Errorf("failed to save user: %w", err)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM user_role WHERE user_id = $1`, saved.ID); err != nil {
		return User{}, fmt.Errorf("failed to clear user roles: %w", err)
	}
	for _, role := range user.Roles {
		_, err := r.db.Exec(ctx,
			`INSERT INTO user_role (user_id, role_id) VALUES ($1, $2)`,
			saved.ID, role.ID)
		if err != nil {
			return User{}, fmt.Errorf("failed to link role %s to user %s: %w", role.Name, saved.Email, err)
		}
	}
	saved.Roles = user.Roles
	return saved, nil
}

func (r *PostgresRepository) rolePrivileges(ctx context.Context, roleID uuid.UUID) ([]Privilege, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name
		FROM privilege p
		JOIN role_privilege rp ON rp.privilege_id = p.id
		WHERE rp.role_id = $1
	`, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role privileges: %w", err)
	}
	defer rows.Close()

	var privileges []Privilege
	for rows.Next() {
		var privilege Privilege
		if err := rows.Scan(&privilege.ID, &privilege.Name); err != nil {
			return nil, fmt.Errorf("failed to scan privilege: %w", err)
		}
		privileges = append(privileges, privilege)
	}
	return privileges, rows.Err()
}

func (r *PostgresRepository) userRoles(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ro.id, ro.name
		FROM role ro
		JOIN user_role ur ON ur.role_id = ro.id
		WHERE ur.user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		privileges, err := r.rolePrivileges(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Privileges = privileges
	}
	return roles, nil
}
