package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret []byte, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestCurrentUser(t *testing.T) {
	secret := []byte("test-secret")
	authn := NewJWTAuthenticator(secret)

	token := signToken(t, secret, Claims{
		Email: "sam@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	identity, err := authn.CurrentUser(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UID)
	assert.Equal(t, "sam@example.com", identity.Email)
}

func TestCurrentUserEmptyToken(t *testing.T) {
	authn := NewJWTAuthenticator([]byte("secret"))
	_, err := authn.CurrentUser("")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCurrentUserWrongSecret(t *testing.T) {
	token := signToken(t, []byte("other-secret"), Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})

	authn := NewJWTAuthenticator([]byte("secret"))
	_, err := authn.CurrentUser(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUserExpiredToken(t *testing.T) {
	secret := []byte("secret")
	token := signToken(t, secret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	authn := NewJWTAuthenticator(secret)
	_, err := authn.CurrentUser(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUserMissingSubject(t *testing.T) {
	secret := []byte("secret")
	token := signToken(t, secret, Claims{Email: "sam@example.com"})

	authn := NewJWTAuthenticator(secret)
	_, err := authn.CurrentUser(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUserNoSecretConfigured(t *testing.T) {
	authn := NewJWTAuthenticator(nil)
	_, err := authn.CurrentUser("whatever")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "sam@example.com", Identity{UID: "u", Email: "sam@example.com"}.DisplayName())
	assert.Equal(t, "Anonymous", Identity{UID: "u"}.DisplayName())
}
