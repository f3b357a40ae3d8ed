// Package config handles XDG configuration directory, file paths and
// environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// AppName is the application directory name.
	AppName = "taskpad"

	// CredentialsFile is the stored access token filename.
	CredentialsFile = "credentials.json"

	// ConversationFile remembers the last chat conversation id.
	ConversationFile = "conversation"

	// DefaultAPIURL is the backend used when nothing else is configured.
	DefaultAPIURL = "http://localhost:8000"
)

// Environment variables.
const (
	EnvAPIURL    = "TASKPAD_API_URL"
	EnvConfigDir = "TASKPAD_CONFIG_DIR"
	EnvDebug     = "TASKPAD_DEBUG"
	EnvLogFile   = "TASKPAD_LOG_FILE"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the backend base URL without a trailing slash.
	APIURL string

	// LogFile receives debug logs when set. Used by the dashboard, which owns
	// the terminal.
	LogFile string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses TASKPAD_CONFIG_DIR, then XDG_CONFIG_HOME/taskpad
// or $HOME/.config/taskpad.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = getEnv(EnvConfigDir, DefaultConfigDir())
	}
	return &Config{
		Dir:     dir,
		APIURL:  NormalizeURL(getEnv(EnvAPIURL, DefaultAPIURL)),
		LogFile: getEnv(EnvLogFile, ""),
		Debug:   getBoolEnv(EnvDebug, false),
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// NormalizeURL trims whitespace and trailing slashes from a base URL.
func NormalizeURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// CredentialsPath returns the path to the stored credentials file.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Dir, CredentialsFile)
}

// ConversationPath returns the path to the last-conversation file.
func (c *Config) ConversationPath() string {
	return filepath.Join(c.Dir, ConversationFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// LastConversation returns the remembered conversation id, or 0.
func (c *Config) LastConversation() int {
	data, err := os.ReadFile(c.ConversationPath())
	if err != nil {
		return 0
	}
	id, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || id < 1 {
		return 0
	}
	return id
}

// SetLastConversation remembers id for the next chat invocation.
// An id of 0 forgets it.
func (c *Config) SetLastConversation(id int) error {
	if id == 0 {
		err := os.Remove(c.ConversationPath())
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := c.EnsureDir(); err != nil {
		return err
	}
	return os.WriteFile(c.ConversationPath(), []byte(strconv.Itoa(id)+"\n"), 0600)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
