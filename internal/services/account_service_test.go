package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mercadito/backend/internal/models"
	"github.com/mercadito/backend/internal/services"
	"github.com/mercadito/backend/internal/testutil"
)

func TestRegisterAndLogin(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := services.NewAccountService(pool)
	ctx := context.Background()

	user, err := accounts.Register(ctx, &models.RegisterRequest{Username: "ana", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "ana", user.Username)
	require.False(t, user.IsAdmin)
	require.NotEqual(t, "secret1", user.PasswordHash)

	loggedIn, err := accounts.Login(ctx, &models.LoginRequest{Username: "ana", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)

	_, err = accounts.Login(ctx, &models.LoginRequest{Username: "ana", Password: "wrong"})
	require.ErrorIs(t, err, services.ErrInvalidPassword)

	_, err = accounts.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "secret1"})
	require.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := services.NewAccountService(pool)
	ctx := context.Background()

	original, err := accounts.Register(ctx, &models.RegisterRequest{Username: "ana", Password: "secret1"})
	require.NoError(t, err)

	_, err = accounts.Register(ctx, &models.RegisterRequest{Username: "ana", Password: "other-pass"})
	require.ErrorIs(t, err, services.ErrUsernameTaken)

	// The original record is untouched: the first password still works.
	loggedIn, err := accounts.Login(ctx, &models.LoginRequest{Username: "ana", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, original.ID, loggedIn.ID)
}

func TestIsAdminReadsFreshFlag(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := services.NewAccountService(pool)
	ctx := context.Background()

	userID := testutil.CreateTestUser(t, pool, "mod", true)

	isAdmin, err := accounts.IsAdmin(ctx, userID)
	require.NoError(t, err)
	require.True(t, isAdmin)

	// Demotion shows up on the very next check, no session in the way.
	testutil.SetAdmin(t, pool, userID, false)

	isAdmin, err = accounts.IsAdmin(ctx, userID)
	require.NoError(t, err)
	require.False(t, isAdmin)

	_, err = accounts.IsAdmin(ctx, 999999)
	require.ErrorIs(t, err, services.ErrUserNotFound)
}
