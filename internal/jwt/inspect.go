// Package jwt reads display claims out of the cached access token.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims describes the fields shown next to the signed-in user.
type TokenClaims struct {
	Subject   string
	SessionID string
	Issuer    string
	ExpiresAt time.Time
}

// Expired reports whether the token carried an expiry that is before now.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Inspect decodes the claims of a JWT access token without verifying its
// signature. The result is for display only; the backend remains the
// authority on whether the token is valid.
func Inspect(tokenString string) (TokenClaims, error) {
	if tokenString == "" {
		return TokenClaims{}, errors.New("token is empty")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("parse access token: %w", err)
	}

	out := TokenClaims{}
	out.Subject, _ = claims.GetSubject()
	out.Issuer, _ = claims.GetIssuer()
	if sid, ok := claims["sid"].(string); ok {
		out.SessionID = sid
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
