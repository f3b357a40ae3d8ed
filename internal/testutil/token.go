package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskpad/internal/session"
)

// TokenSecret signs tokens minted by SignToken and the fake API.
const TokenSecret = "test-secret"

// SignToken returns an HS256 JWT with the given subject and expiry.
func SignToken(t *testing.T, subject string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte(TokenSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

// WriteCredentials stores a session for user-1 that is valid for an hour.
func WriteCredentials(t *testing.T, path string) {
	t.Helper()
	tok := SignToken(t, "user-1", time.Now().Add(time.Hour))
	creds := session.NewCredentials(tok, "bearer", "user-1", "me@example.com")
	if err := session.NewStore(path).Save(creds); err != nil {
		t.Fatalf("failed to save credentials: %v", err)
	}
}
