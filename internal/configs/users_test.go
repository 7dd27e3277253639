package configs

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadUserConfig(t *testing.T) {
	s := &Settings{DataDir: t.TempDir()}
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cfg := &UserConfig{User: User{
		Username:     "jane",
		UUID:         GenerateUserUUID(),
		Email:        "jane@example.com",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    created,
	}}
	require.NoError(t, s.SaveUserConfig(cfg))

	loaded, err := s.LoadUserConfig("jane")
	require.NoError(t, err)
	assert.Equal(t, cfg.User.UUID, loaded.User.UUID)
	assert.Equal(t, "jane@example.com", loaded.User.Email)
	assert.True(t, created.Equal(loaded.User.CreatedAt))
	assert.Empty(t, loaded.Reset.Token)
}

func TestLoadUserConfigMissing(t *testing.T) {
	s := &Settings{DataDir: t.TempDir()}

	_, err := s.LoadUserConfig("nobody")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSaveUserConfigRequiresUsername(t *testing.T) {
	s := &Settings{DataDir: t.TempDir()}
	assert.Error(t, s.SaveUserConfig(&UserConfig{}))
}

func TestListUsernames(t *testing.T) {
	s := &Settings{DataDir: t.TempDir()}

	names, err := s.ListUsernames()
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, u := range []string{"bob", "alice"} {
		require.NoError(t, s.SaveUserConfig(&UserConfig{User: User{Username: u}}))
	}
	require.NoError(t, os.MkdirAll(s.UserDir("stray"), 0700))

	names, err = s.ListUsernames()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, names)
}

func TestGenerateUserUUID(t *testing.T) {
	a := GenerateUserUUID()
	b := GenerateUserUUID()

	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
