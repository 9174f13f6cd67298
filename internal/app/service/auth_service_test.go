package service

import (
	"context"
	"testing"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/repository"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/db"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret"

func setupAuthServiceTest(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return NewAuthService(
		repository.NewUserRepository(testDB),
		testJWTSecret,
		15*time.Minute,
		7*24*time.Hour,
	)
}

func TestAuthService_Register(t *testing.T) {
	authService := setupAuthServiceTest(t)
	ctx := context.Background()

	user, tokens, err := authService.Register(ctx, "Jane", " Jane@Example.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, model.RoleCustomer, user.Role)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	_, _, err = authService.Register(ctx, "Jane", "jane@example.com", "other123")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	authService := setupAuthServiceTest(t)
	ctx := context.Background()

	_, _, err := authService.Register(ctx, "Jane", "jane@example.com", "secret123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "Valid credentials", email: "jane@example.com", password: "secret123"},
		{name: "Email is case-insensitive", email: "JANE@example.com", password: "secret123"},
		{name: "Wrong password", email: "jane@example.com", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "Unknown user", email: "who@example.com", password: "secret123", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Jane", user.Name)
			assert.NotEmpty(t, tokens.AccessToken)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	authService := setupAuthServiceTest(t)
	ctx := context.Background()

	user, tokens, err := authService.Register(ctx, "Jane", "jane@example.com", "secret123")
	require.NoError(t, err)

	refreshed, err := authService.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)

	claims, err := util.ValidateToken(refreshed.AccessToken, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, util.TokenTypeAccess, claims.TokenType)

	_, err = authService.RefreshToken(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = authService.RefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService := setupAuthServiceTest(t)
	ctx := context.Background()

	user, _, err := authService.Register(ctx, "Jane", "jane@example.com", "secret123")
	require.NoError(t, err)
	_, _, err = authService.Register(ctx, "Bob", "bob@example.com", "secret123")
	require.NoError(t, err)

	updated, err := authService.UpdateProfile(ctx, user.ID, "Janet", "", "newpass1")
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.Name)

	_, _, err = authService.Login(ctx, "jane@example.com", "newpass1")
	assert.NoError(t, err)

	_, err = authService.UpdateProfile(ctx, user.ID, "", "bob@example.com", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = authService.UpdateProfile(ctx, 9999, "X", "", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
