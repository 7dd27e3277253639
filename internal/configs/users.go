package configs

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// UserConfig is the per-user credential file owned by the accounts package.
type UserConfig struct {
	User  User       `toml:"user"`
	Reset ResetToken `toml:"reset"`
}

type User struct {
	Username     string    `toml:"username"`
	UUID         string    `toml:"user_uuid"`
	Email        string    `toml:"email"`
	PasswordHash string    `toml:"password_hash"`
	CreatedAt    time.Time `toml:"created_at"`
}

// ResetToken is a pending password reset. A zero value means none is pending.
type ResetToken struct {
	Token     string    `toml:"token,omitempty"`
	ExpiresAt time.Time `toml:"expires_at,omitempty"`
}

// LoadUserConfig loads username's credential file.
// It returns an error wrapping os.ErrNotExist when the user has none.
func (s *Settings) LoadUserConfig(username string) (*UserConfig, error) {
	configPath := s.UserConfigPath(username)

	if _, err := os.Stat(configPath); err != nil {
		return nil, err
	}

	config := &UserConfig{}
	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	return config, nil
}

// SaveUserConfig saves a user's credential file.
func (s *Settings) SaveUserConfig(config *UserConfig) error {
	if config.User.Username == "" {
		return errors.New("user config has no username")
	}

	if err := SaveTOML(s.UserConfigPath(config.User.Username), config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	return nil
}

// ListUsernames returns the names of every user directory with a credential file.
func (s *Settings) ListUsernames() ([]string, error) {
	entries, err := os.ReadDir(s.UsersDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(s.UserConfigPath(entry.Name())); err == nil {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// GenerateUserUUID generates a new UUID for a user.
func GenerateUserUUID() string {
	return uuid.New().String()
}
