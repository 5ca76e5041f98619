package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/loginwatch/loginwatch/pkg/iam"
	"github.com/loginwatch/loginwatch/pkg/privilege"
)

func TestSeedCreatesRolesAndUsers(t *testing.T) {
	repo := iam.NewInMemRepository()
	ctx := context.Background()

	require.NoError(t, NewSeeder(repo).Run(ctx))

	admin, err := repo.GetRoleByName(ctx, privilege.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admin.Privileges, 4)

	user, err := repo.GetRoleByName(ctx, privilege.RoleUser)
	require.NoError(t, err)
	assert.Len(t, user.Privileges, 2)

	manager, err := repo.GetRoleByName(ctx, privilege.RoleManager)
	require.NoError(t, err)
	assert.Len(t, manager.Privileges, 3)

	testUser, err := repo.GetUserByEmail(ctx, "test@test.com")
	require.NoError(t, err)
	assert.True(t, testUser.Enabled)
	require.Len(t, testUser.Roles, 1)
	assert.Equal(t, privilege.RoleAdmin, testUser.Roles[0].Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(testUser.PasswordHash), []byte("test")))

	managerUser, err := repo.GetUserByEmail(ctx, "manager@test.com")
	require.NoError(t, err)
	require.Len(t, managerUser.Roles, 1)
	assert.Equal(t, privilege.RoleManager, managerUser.Roles[0].Name)
}

func TestSeedRunsOncePerSeeder(t *testing.T) {
	repo := iam.NewInMemRepository()
	ctx := context.Background()
	seeder := NewSeeder(repo)

	require.NoError(t, seeder.Run(ctx))
	require.NoError(t, seeder.Run(ctx))
}

func TestSeedIdempotentAcrossSeeders(t *testing.T) {
	repo := iam.NewInMemRepository()
	ctx := context.Background()

	require.NoError(t, NewSeeder(repo).Run(ctx))

	before, err := repo.GetUserByEmail(ctx, "test@test.com")
	require.NoError(t, err)

	// A second process seeding the same store must not duplicate or
	// reset anything.
	require.NoError(t, NewSeeder(repo).Run(ctx))

	after, err := repo.GetUserByEmail(ctx, "test@test.com")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)

	admin, err := repo.GetRoleByName(ctx, privilege.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admin.Privileges, 4)
}
