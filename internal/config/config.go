// Package config persists local client state: which server to talk to,
// the auth token, the active workspace, and UI preferences. Server-owned
// data (accounts, tenants, documents) is never cached here.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"

	"github.com/ledgerdesk/ledgerdesk/internal/errors"
)

// Config holds the client configuration. All access goes through the
// accessor methods; the zero value is not usable, use Load.
type Config struct {
	ServerURL            string `json:"server_url,omitempty"`
	AuthToken            string `json:"auth_token,omitempty"`
	AccountEmail         string `json:"account_email,omitempty"`
	ActiveTenantID       string `json:"active_tenant_id,omitempty"`
	Theme                string `json:"theme,omitempty"`
	NotificationsEnabled bool   `json:"notifications_enabled,omitempty"`
	WelcomeShown         bool   `json:"welcome_shown,omitempty"`

	mu       sync.RWMutex
	filePath string
}

// Environment variables that override the stored config. A .env file in
// the working directory is honored too (godotenv), which keeps self-hosted
// deployments scriptable without editing JSON by hand.
const (
	EnvServerURL = "LEDGERDESK_SERVER_URL"
	EnvAuthToken = "LEDGERDESK_TOKEN"
)

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ledgerdesk"), nil
}

func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, creating an empty one if none exists,
// then applies the environment overlay.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, errors.ConfigLoadFailed("~", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path. Used directly by tests.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{filePath: path}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.ConfigLoadFailed(path, err)
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.ConfigLoadFailed(path, err)
		}
	}

	// Overlay: .env file first, then real environment wins.
	_ = godotenv.Load()
	if v := os.Getenv(EnvServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv(EnvAuthToken); v != "" {
		cfg.AuthToken = v
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}
	if err := os.WriteFile(c.filePath, data, 0600); err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}
	return nil
}

// GetServerURL returns the configured server base URL, or "" when the
// client has never been connected.
func (c *Config) GetServerURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerURL
}

// SetServerURL stores the server base URL.
func (c *Config) SetServerURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ServerURL = url
}

// GetAuthToken returns the stored bearer token, if any.
func (c *Config) GetAuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthToken
}

// SetCredentials stores the token and account email after a login or
// registration. Pass empty strings to clear them.
func (c *Config) SetCredentials(token, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AuthToken = token
	c.AccountEmail = email
}

// GetAccountEmail returns the email of the signed-in account.
func (c *Config) GetAccountEmail() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AccountEmail
}

// GetActiveTenantID returns the selected workspace ID, or "".
func (c *Config) GetActiveTenantID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ActiveTenantID
}

// SetActiveTenantID stores the selected workspace ID.
func (c *Config) SetActiveTenantID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ActiveTenantID = id
}

// GetTheme returns the saved theme name, or "".
func (c *Config) GetTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Theme
}

// SetTheme stores the theme name.
func (c *Config) SetTheme(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Theme = name
}

// GetNotificationsEnabled reports whether desktop notifications are on.
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled toggles desktop notifications.
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}

// GetWelcomeShown reports whether the first-run welcome has been shown.
func (c *Config) GetWelcomeShown() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.WelcomeShown
}

// MarkWelcomeShown records that the first-run welcome has been shown.
func (c *Config) MarkWelcomeShown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.WelcomeShown = true
}

// Clear wipes credentials and workspace selection, keeping the server URL
// and UI preferences. Used by sign-out and `ledgerdesk clean`.
func (c *Config) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AuthToken = ""
	c.AccountEmail = ""
	c.ActiveTenantID = ""
}
