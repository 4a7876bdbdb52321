// Package auth gates write operations behind a verified user identity.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Identity is the authenticated user consulted before writes. Reads never
// require one.
type Identity struct {
	UID   string
	Email string
}

// DisplayName is the name recorded on reviews: the email when present,
// otherwise "Anonymous".
func (i Identity) DisplayName() string {
	if i.Email != "" {
		return i.Email
	}
	return "Anonymous"
}

// Authenticator resolves a bearer token to the current user. A nil identity
// with ErrUnauthorized means no user is signed in.
type Authenticator interface {
	CurrentUser(token string) (*Identity, error)
}

// Claims are the JWT claims this service issues and accepts.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 tokens against a shared secret.
type JWTAuthenticator struct {
	secret []byte
}

func NewJWTAuthenticator(secret []byte) *JWTAuthenticator {
	return &JWTAuthenticator{secret: secret}
}

func (a *JWTAuthenticator) CurrentUser(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	if len(a.secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method", ErrInvalidToken)
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{UID: claims.Subject, Email: claims.Email}, nil
}
