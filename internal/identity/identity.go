// Package identity is the boundary with the external identity provider.
// The core treats the user as an opaque {uid, email, name} triple extracted
// from a signed ID token; no other part of the provider's protocol is
// touched.
package identity

import (
	"time"

	"github.com/authenta/authenta/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// User is the minimal profile the rest of the client needs.
type User struct {
	UID   string
	Email string
	Name  string
}

// Claims carries the provider's profile fields alongside the registered
// JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GenerateToken signs an ID token for the given user. Used by tests and by
// local single-user setups where this client is its own provider.
func GenerateToken(user User, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		UID:   user.UID,
		Email: user.Email,
		Name:  user.Name,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates tokenString against secretKey and returns the user
// it identifies.
func ParseToken(tokenString string, secretKey []byte) (*User, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.UID == "" {
		return nil, common.ErrInvalidToken
	}

	return &User{UID: claims.UID, Email: claims.Email, Name: claims.Name}, nil
}
