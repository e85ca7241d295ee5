// Package auth mints and parses the HS256 access tokens handed to clients.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the user in sub, the device in cid and the granted scopes
// as one space separated string.
type Claims struct {
	jwt.RegisteredClaims
	ClientID string `json:"cid"`
	Scope    string `json:"scope,omitempty"`
}

func (c *Claims) UserID() string { return c.Subject }

func (c *Claims) Scopes() []string { return strings.Fields(c.Scope) }

// GenerateToken signs an access token for userID bound to clientID, issued at
// now and valid for validityDuration.
func GenerateToken(userID, clientID string, scopes []string, secretKey []byte, validityDuration time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		ClientID: clientID,
		Scope:    strings.Join(scopes, " "),
	})

	return token.SignedString(secretKey)
}

// ParseToken validates signature and expiry against now. An expired token
// yields common.ErrTokenExpired; anything else that fails validation yields
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte, now time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
