package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/tokens"
	"github.com/mrlokans/library/internal/database/users"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tm := NewTokenManager("test-secret", "library", time.Hour)
	return NewService(users.NewRepository(db.DB), tokens.NewRepository(db.DB), tm, config.Auth{BcryptCost: 4})
}

func TestService_Register(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid", "reader", "password123", nil},
		{"duplicate", "reader", "password123", ErrUserExists},
		{"missing username", "", "password123", ErrUsernameRequired},
		{"missing password", "writer", "", ErrPasswordRequired},
		{"bad username", "a b", "password123", ErrUsernameInvalid},
		{"short password", "writer", "short", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Register(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, user.ID)
			assert.NotEqual(t, tt.password, user.Password)
		})
	}
}

func TestService_LoginAndAuthenticate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "reader", "password123")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "reader", "nope-nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	session, err := svc.Login(ctx, "reader", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)

	claims, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, claims))

		_, err := svc.Authenticate(ctx, session.Token)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("a fresh login still works", func(t *testing.T) {
		again, err := svc.Login(ctx, "reader", "password123")
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, again.Token)
		assert.NoError(t, err)
	})
}

func TestService_PurgeRevoked(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "reader", "password123")
	require.NoError(t, err)
	session, err := svc.Login(ctx, "reader", "password123")
	require.NoError(t, err)
	claims, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))

	purged, err := svc.PurgeRevoked(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), purged, "token has not expired yet")

	svc.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	purged, err = svc.PurgeRevoked(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestService_GetUserByID(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
