package auth_test

import (
	"context"
	"testing"

	"github.com/hosteline/epass-server/internal/auth"
	"github.com/hosteline/epass-server/internal/storage/memory"
	"github.com/hosteline/epass-server/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtConfig = auth.JWTConfig{Secret: "test-secret", ExpiryHours: 1}

func TestRegisterAndLogin(t *testing.T) {
	svc := auth.NewService(memory.NewStore(), jwtConfig)
	ctx := context.Background()

	result, err := svc.Register(ctx, auth.RegisterInput{
		Username: "vishesh",
		Password: "password123",
		Name:     "Vishesh Sachan",
		RoomNo:   "210",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, auth.RoleStudent, result.Role, "self-registration always yields a student account")

	token, err := svc.Login(ctx, "vishesh", "password123")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(jwtConfig.Secret, token)
	require.NoError(t, err)
	assert.Equal(t, result.ID, claims.UserID)
	assert.Equal(t, auth.RoleStudent, claims.Role)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := auth.NewService(memory.NewStore(), jwtConfig)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{Username: "vishesh", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, auth.RegisterInput{Username: "vishesh", Password: "otherpassword"})
	assert.ErrorIs(t, err, users.ErrUsernameExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := auth.NewService(memory.NewStore(), jwtConfig)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{Username: "vishesh", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "vishesh", "wrongpassword")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	svc := auth.NewService(memory.NewStore(), jwtConfig)
	ctx := context.Background()

	result, err := svc.Register(ctx, auth.RegisterInput{
		Username: "vishesh",
		Password: "password123",
		Hostel:   "BH-2",
	})
	require.NoError(t, err)

	user, err := svc.Profile(ctx, auth.Identity{UserID: result.ID, Role: auth.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, "vishesh", user.Username)
	assert.Equal(t, "BH-2", user.Hostel)

	_, err = svc.Profile(ctx, auth.Identity{UserID: "missing", Role: auth.RoleStudent})
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}
