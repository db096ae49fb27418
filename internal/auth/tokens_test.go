package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	tm := NewTokenManager("test-secret", "library", time.Hour)

	token, expiresAt, err := tm.Issue(42, "reader")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.Parse(token)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, "reader", claims.Username)
	assert.Equal(t, "library", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	t.Run("every token gets its own jti", func(t *testing.T) {
		other, _, err := tm.Issue(42, "reader")
		require.NoError(t, err)
		otherClaims, err := tm.Parse(other)
		require.NoError(t, err)
		assert.NotEqual(t, claims.ID, otherClaims.ID)
	})
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager("test-secret", "library", time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := tm.Parse("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", "library", time.Hour)
		token, _, err := other.Issue(1, "reader")
		require.NoError(t, err)

		_, err = tm.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenManager("test-secret", "someone-else", time.Hour)
		token, _, err := other.Issue(1, "reader")
		require.NoError(t, err)

		_, err = tm.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenManager("test-secret", "library", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, err := past.Issue(1, "reader")
		require.NoError(t, err)

		_, err = tm.Parse(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("unsigned", func(t *testing.T) {
		claims := Claims{
			Username: "reader",
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti",
				Subject:   "1",
				Issuer:    "library",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tm.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_UserID(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	_, err := claims.UserID()
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims.Subject = "0"
	_, err = claims.UserID()
	assert.ErrorIs(t, err, ErrInvalidToken)
}
