// Package session persists the backend access token between invocations.
//
// The credentials file is process-wide shared state: the API client reads it
// on every request and clears it when the backend rejects the token. Writes
// and clears take an advisory file lock so a CLI call and a running dashboard
// never interleave.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/oauth2"
)

var (
	// ErrNoCredentials is returned when nothing is stored.
	ErrNoCredentials = errors.New("no stored credentials")

	// ErrExpired is returned when the stored token is past its expiry.
	ErrExpired = errors.New("stored token expired")
)

// Credentials is what the login and register endpoints hand back, plus the
// email used to obtain it.
type Credentials struct {
	Token  *oauth2.Token `json:"token"`
	UserID string        `json:"user_id"`
	Email  string        `json:"email,omitempty"`
}

// NewCredentials builds credentials from an auth response. The token expiry
// is taken from the JWT exp claim when present.
func NewCredentials(accessToken, tokenType, userID, email string) Credentials {
	tok := &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   tokenType,
	}
	if claims, err := ParseClaims(accessToken); err == nil && !claims.ExpiresAt.IsZero() {
		tok.Expiry = claims.ExpiresAt
	}
	return Credentials{Token: tok, UserID: userID, Email: email}
}

// Store reads and writes a credentials file.
type Store struct {
	path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the credentials file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a credentials file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the stored credentials.
func (s *Store) Load() (Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, ErrNoCredentials
		}
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("invalid credentials file: %w", err)
	}
	if creds.Token == nil || creds.Token.AccessToken == "" {
		return Credentials{}, ErrNoCredentials
	}
	return creds, nil
}

// Save writes credentials with mode 0600, replacing any previous file.
func (s *Store) Save(creds Credentials) error {
	if creds.Token == nil || creds.Token.AccessToken == "" {
		return errors.New("access token required")
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock credentials: %w", err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

// Clear removes stored credentials. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if _, err := os.Stat(filepath.Dir(s.path)); os.IsNotExist(err) {
		return nil
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock credentials: %w", err)
	}
	defer lock.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Token implements oauth2.TokenSource. The file is re-read on every call so
// a login or logout in another process takes effect immediately.
func (s *Store) Token() (*oauth2.Token, error) {
	creds, err := s.Load()
	if err != nil {
		return nil, err
	}
	if !creds.Token.Valid() {
		return nil, ErrExpired
	}
	return creds.Token, nil
}
