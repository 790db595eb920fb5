// Package auth is the identity-provider boundary: it verifies bearer tokens
// issued by the hosted identity provider and exposes the authenticated
// subject to the rest of the application. Operations without a verified
// subject fail immediately and never partially succeed.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthenticated = errors.New("not authenticated")

// Claims is the token payload we rely on; Subject identifies the owner of
// every record the caller may touch.
type Claims struct {
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token against secret and returns its claims.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token carries no subject", ErrUnauthenticated)
	}
	return claims, nil
}
