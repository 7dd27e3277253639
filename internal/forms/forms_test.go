package forms

import (
	"io"
	"testing"

	"github.com/PolarWolf314/formvault/internal/configs"
	logger "github.com/PolarWolf314/formvault/internal/logging"
	"github.com/PolarWolf314/formvault/internal/records"
	"github.com/PolarWolf314/formvault/internal/vault"
)

var quietLog = logger.Logger{Out: io.Discard, Err: io.Discard}

func newTestRepo(t *testing.T) (*Repository, *records.Store, *configs.Settings) {
	t.Helper()
	settings := &configs.Settings{DataDir: t.TempDir()}
	store := records.NewStore(records.Options{Logger: quietLog})
	return NewRepository(settings, store, quietLog), store, settings
}

func testKey() vault.Key {
	return vault.DeriveKey("jane", "$2y$10$hash")
}

func userConfig(username string) *configs.UserConfig {
	return &configs.UserConfig{User: configs.User{Username: username, UUID: configs.GenerateUserUUID()}}
}

func contactFields() []Field {
	return []Field{
		{Name: "fullName", Label: "Full name", Type: TypeText, Required: true},
		{Name: "email", Label: "Email", Type: TypeEmail},
		{Name: "topics", Label: "Topics", Type: TypeCheckboxGroup, Options: []string{"sales", "support"}},
	}
}
