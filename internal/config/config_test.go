package config_test

import (
	"path/filepath"
	"testing"

	"taskpad/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvConfigDir, "")
	t.Setenv(config.EnvDebug, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	cfg, err := config.New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != filepath.Join("/tmp/xdg", "taskpad") {
		t.Errorf("expected xdg dir, got %q", cfg.Dir)
	}
	if cfg.APIURL != config.DefaultAPIURL {
		t.Errorf("expected %q, got %q", config.DefaultAPIURL, cfg.APIURL)
	}
	if cfg.Debug {
		t.Error("expected debug off")
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv(config.EnvAPIURL, " https://api.example.com/ ")
	t.Setenv(config.EnvConfigDir, "/tmp/custom")
	t.Setenv(config.EnvDebug, "true")

	cfg, err := config.New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != "/tmp/custom" {
		t.Errorf("expected /tmp/custom, got %q", cfg.Dir)
	}
	if cfg.APIURL != "https://api.example.com" {
		t.Errorf("expected trimmed url, got %q", cfg.APIURL)
	}
	if !cfg.Debug {
		t.Error("expected debug on")
	}
}

func TestNew_ExplicitDirWins(t *testing.T) {
	t.Setenv(config.EnvConfigDir, "/tmp/custom")

	cfg, _ := config.New("/tmp/explicit")
	if cfg.Dir != "/tmp/explicit" {
		t.Errorf("expected /tmp/explicit, got %q", cfg.Dir)
	}
	if cfg.CredentialsPath() != filepath.Join("/tmp/explicit", "credentials.json") {
		t.Errorf("unexpected credentials path %q", cfg.CredentialsPath())
	}
}

func TestLastConversation_RoundTrip(t *testing.T) {
	cfg := &config.Config{Dir: filepath.Join(t.TempDir(), "nested")}

	if got := cfg.LastConversation(); got != 0 {
		t.Errorf("expected 0 before save, got %d", got)
	}
	if err := cfg.SetLastConversation(42); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := cfg.LastConversation(); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if err := cfg.SetLastConversation(0); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := cfg.LastConversation(); got != 0 {
		t.Errorf("expected 0 after clear, got %d", got)
	}
	// Clearing twice is fine.
	if err := cfg.SetLastConversation(0); err != nil {
		t.Errorf("second clear: %v", err)
	}
}
