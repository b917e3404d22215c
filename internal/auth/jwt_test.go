package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func accessClaims(userID string, expiresIn time.Duration) *Claims {
	now := time.Now().UTC()
	return &Claims{
		UserID: userID,
		Email:  "jane@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
}

func TestValidateAccessToken(t *testing.T) {
	v := NewVerifier("test-secret")

	token := signToken(t, "test-secret", accessClaims("user-1", time.Hour))

	claims, err := v.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	v := NewVerifier("test-secret")

	token := signToken(t, "other-secret", accessClaims("user-1", time.Hour))

	_, err := v.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	v := NewVerifier("test-secret")

	token := signToken(t, "test-secret", accessClaims("user-1", -time.Hour))

	_, err := v.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_MissingUserID(t *testing.T) {
	v := NewVerifier("test-secret")

	token := signToken(t, "test-secret", accessClaims("", time.Hour))

	_, err := v.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	v := NewVerifier("test-secret")

	_, err := v.ValidateAccessToken("not.a.jwt")
	assert.Error(t, err)
}

func TestMiddlewareAdapter(t *testing.T) {
	v := NewVerifier("test-secret")

	token := signToken(t, "test-secret", accessClaims("user-1", time.Hour))

	claims, err := v.Middleware(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}
