package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	envDataDir    = "FORMVAULT_DATA_DIR"
	envAdminUsers = "FORMVAULT_ADMIN_USERS"
)

// Settings holds formvault's resolved configuration.
type Settings struct {
	// DataDir is the root of all user, form and record data.
	DataDir string `toml:"data_dir"`

	// AdminUsers lists usernames with administrative access.
	AdminUsers []string `toml:"admin_users"`

	// ResetTokenTTL is how long a password reset token stays valid, e.g. "1h".
	ResetTokenTTL string `toml:"reset_token_ttl"`

	// SweepMinAge is the minimum age of a temp file before sweep removes it, e.g. "10m".
	SweepMinAge string `toml:"sweep_min_age"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() (*Settings, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("error getting home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return &Settings{
		DataDir:       filepath.Join(dataDir, "formvault"),
		AdminUsers:    []string{"admin"},
		ResetTokenTTL: "1h",
		SweepMinAge:   "10m",
	}, nil
}

// DefaultSettingsPath returns the settings file location under the user config directory.
func DefaultSettingsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting config directory: %w", err)
	}
	return filepath.Join(configDir, "formvault", "config.toml"), nil
}

// LoadSettings resolves settings from defaults, the file at path (if it
// exists) and the environment. An empty path skips the file.
func LoadSettings(path string) (*Settings, error) {
	settings, err := DefaultSettings()
	if err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := LoadTOML(path, settings); err != nil {
				return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to check settings file %s: %w", path, err)
		}
	}

	if v := os.Getenv(envDataDir); v != "" {
		settings.DataDir = v
	}
	if v := os.Getenv(envAdminUsers); v != "" {
		settings.AdminUsers = splitList(v)
	}

	if settings.DataDir == "" {
		return nil, fmt.Errorf("data directory is not configured")
	}
	if _, err := settings.TokenTTL(); err != nil {
		return nil, err
	}
	if _, err := settings.SweepAge(); err != nil {
		return nil, err
	}

	return settings, nil
}

// IsAdmin reports whether username is listed as an admin.
func (s *Settings) IsAdmin(username string) bool {
	for _, admin := range s.AdminUsers {
		if admin == username {
			return true
		}
	}
	return false
}

// TokenTTL parses ResetTokenTTL.
func (s *Settings) TokenTTL() (time.Duration, error) {
	return parseDuration("reset_token_ttl", s.ResetTokenTTL, time.Hour)
}

// SweepAge parses SweepMinAge.
func (s *Settings) SweepAge() (time.Duration, error) {
	return parseDuration("sweep_min_age", s.SweepMinAge, 10*time.Minute)
}

func parseDuration(name, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", name, value)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
