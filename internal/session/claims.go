package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the parts of the access token the client cares about.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token has an expiry at or before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims decodes the token payload without verifying the signature.
// Only the backend holds the signing key; the client uses the claims for
// display and to skip requests that would certainly be rejected.
func ParseClaims(accessToken string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return Claims{}, fmt.Errorf("invalid access token: %w", err)
	}

	var out Claims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
