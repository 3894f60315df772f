package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/straye-as/product-configurator/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-entropy"

func signClaims(t *testing.T, secret string, claims auth.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, "configurator", time.Hour)

	token, err := tokens.Issue("user-1", "Kari", auth.RoleAdmin, auth.RoleViewer)
	require.NoError(t, err)

	user, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.Subject)
	assert.Equal(t, "Kari", user.Name)
	assert.Equal(t, auth.AuthTypeJWT, user.AuthType)
	assert.Equal(t, []auth.Role{auth.RoleAdmin, auth.RoleViewer}, user.Roles)
}

func TestTokenService_Rejects(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, "configurator", time.Hour)
	now := time.Now()

	t.Run("expired", func(t *testing.T) {
		token := signClaims(t, testSecret, auth.Claims{
			Roles: []string{"admin"},
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				Issuer:    "configurator",
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			},
		})
		_, err := tokens.ValidateToken(token)
		assert.True(t, errors.Is(err, auth.ErrExpiredToken))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := auth.NewTokenService(testSecret, "someone-else", time.Hour).Issue("user-1", "", auth.RoleAdmin)
		require.NoError(t, err)
		_, err = tokens.ValidateToken(other)
		assert.True(t, errors.Is(err, auth.ErrInvalidToken))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := auth.NewTokenService("another-secret", "configurator", time.Hour).Issue("user-1", "", auth.RoleAdmin)
		require.NoError(t, err)
		_, err = tokens.ValidateToken(other)
		assert.True(t, errors.Is(err, auth.ErrInvalidToken))
	})

	t.Run("no expiry", func(t *testing.T) {
		token := signClaims(t, testSecret, auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: "configurator"},
		})
		_, err := tokens.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("no subject", func(t *testing.T) {
		token := signClaims(t, testSecret, auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "configurator", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		})
		_, err := tokens.ValidateToken(token)
		assert.True(t, errors.Is(err, auth.ErrInvalidToken))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.ValidateToken("not.a.token")
		assert.True(t, errors.Is(err, auth.ErrInvalidToken))
	})
}

func TestTokenService_DropsUnknownRoles(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, "", time.Hour)
	token := signClaims(t, testSecret, auth.Claims{
		Roles: []string{"root", "viewer"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "anyone",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	user, err := tokens.ValidateToken(token)
	require.NoError(t, err, "issuer is not checked when unset")
	assert.Equal(t, []auth.Role{auth.RoleViewer}, user.Roles)
}

func TestTokenService_MissingSecret(t *testing.T) {
	tokens := auth.NewTokenService("", "", 0)

	_, err := tokens.Issue("user-1", "")
	assert.ErrorIs(t, err, auth.ErrMissingKey)

	_, err = tokens.ValidateToken("x")
	assert.ErrorIs(t, err, auth.ErrMissingKey)
}
