package session_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskpad/internal/session"
	"taskpad/internal/testutil"
)

func newStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(filepath.Join(t.TempDir(), "cfg", "credentials.json"))
}

func TestStore_LoadMissing(t *testing.T) {
	store := newStore(t)

	_, err := store.Load()
	if !errors.Is(err, session.ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
	if store.Exists() {
		t.Error("expected no credentials file")
	}
}

func TestStore_SaveLoadClear(t *testing.T) {
	store := newStore(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := testutil.SignToken(t, "user-1", exp)

	creds := session.NewCredentials(token, "bearer", "user-1", "a@example.com")
	if err := store.Save(creds); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.UserID != "user-1" || got.Email != "a@example.com" {
		t.Errorf("unexpected credentials: %+v", got)
	}
	if !got.Token.Expiry.Equal(exp) {
		t.Errorf("expected expiry %v, got %v", exp, got.Token.Expiry)
	}

	tok, err := store.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok.AccessToken != token {
		t.Errorf("expected stored access token")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.Exists() {
		t.Error("expected credentials removed")
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second clear should be a no-op, got %v", err)
	}
}

func TestStore_TokenExpired(t *testing.T) {
	store := newStore(t)
	token := testutil.SignToken(t, "user-1", time.Now().Add(-time.Minute))

	if err := store.Save(session.NewCredentials(token, "bearer", "user-1", "")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Token(); !errors.Is(err, session.ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestStore_SaveRejectsEmptyToken(t *testing.T) {
	store := newStore(t)
	if err := store.Save(session.Credentials{UserID: "x"}); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	claims, err := session.ParseClaims(testutil.SignToken(t, "user-42", exp))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-42" {
		t.Errorf("expected subject user-42, got %q", claims.Subject)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, claims.ExpiresAt)
	}
	if claims.Expired(time.Now()) {
		t.Error("expected not expired")
	}
	if !claims.Expired(exp.Add(time.Second)) {
		t.Error("expected expired after exp")
	}
}

func TestParseClaims_Garbage(t *testing.T) {
	if _, err := session.ParseClaims("not-a-jwt"); err == nil {
		t.Error("expected error")
	}

	// Opaque tokens still produce usable credentials without an expiry.
	creds := session.NewCredentials("opaque", "bearer", "u", "")
	if !creds.Token.Expiry.IsZero() {
		t.Error("expected zero expiry for opaque token")
	}
}
