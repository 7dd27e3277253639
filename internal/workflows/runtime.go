package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/formvault/internal/accounts"
	"github.com/PolarWolf314/formvault/internal/audit"
	"github.com/PolarWolf314/formvault/internal/configs"
	kerrors "github.com/PolarWolf314/formvault/internal/errors"
	"github.com/PolarWolf314/formvault/internal/forms"
	logger "github.com/PolarWolf314/formvault/internal/logging"
	"github.com/PolarWolf314/formvault/internal/records"
	"github.com/PolarWolf314/formvault/internal/vault"
)

// Runtime bundles the services every workflow needs.
type Runtime struct {
	Settings *configs.Settings
	Store    *records.Store
	Forms    *forms.Repository
	Accounts *accounts.Service
	Log      logger.Logger
}

// RuntimeOptions configures NewRuntime.
type RuntimeOptions struct {
	Settings *configs.Settings
	Logger   logger.Logger

	// BcryptCost overrides the bcrypt cost for new hashes. Zero uses the default.
	BcryptCost int
}

// NewRuntime wires the services over one shared lock registry.
func NewRuntime(opts RuntimeOptions) *Runtime {
	store := records.NewStore(records.Options{Logger: opts.Logger, Locks: records.NewLocks()})
	return &Runtime{
		Settings: opts.Settings,
		Store:    store,
		Forms:    forms.NewRepository(opts.Settings, store, opts.Logger),
		Accounts: accounts.NewService(accounts.Options{
			Settings:   opts.Settings,
			Store:      store,
			Logger:     opts.Logger,
			BcryptCost: opts.BcryptCost,
		}),
		Log: opts.Logger,
	}
}

// openForm loads a form of username together with the owner's record key.
func (rt *Runtime) openForm(username, slug string) (*forms.Config, vault.Key, error) {
	key, err := rt.Accounts.Key(username)
	if err != nil {
		return nil, vault.Key{}, err
	}
	cfg, err := rt.Forms.Load(username, slug)
	if err != nil {
		return nil, vault.Key{}, err
	}
	return cfg, key, nil
}

// requireAdmin authenticates actor and checks it is listed as an admin.
func (rt *Runtime) requireAdmin(ctx context.Context, actor, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := rt.Accounts.Authenticate(actor, password); err != nil {
		return err
	}
	if !rt.Settings.IsAdmin(actor) {
		return fmt.Errorf("%w: %s is not an admin", kerrors.ErrPermissionDenied, actor)
	}
	return nil
}

func (rt *Runtime) audit(entry audit.Entry) {
	audit.Log(rt.Settings.AuditLogPath(), entry)
}

// auditAs fills in the user's UUID when the credential file is readable.
func (rt *Runtime) auditAs(op, username string) audit.Entry {
	entry := audit.NewEntry(op, username)
	if cfg, err := rt.Accounts.Load(username); err == nil {
		entry.UserUUID = cfg.User.UUID
	}
	return entry
}
