package workflows

import (
	"context"

	"github.com/PolarWolf314/formvault/internal/audit"
	"github.com/PolarWolf314/formvault/internal/forms"
	"github.com/PolarWolf314/formvault/internal/records"
)

// CreateFormOptions configures the create-form workflow.
type CreateFormOptions struct {
	Username string
	Name     string
	Fields   []forms.Field
}

// CreateForm defines a new form for an existing user and writes the
// encrypted header of its record file.
//
// Returns ErrUserNotFound if the user is not registered.
// Returns ErrNoValidFields if no field survives normalization.
func (rt *Runtime) CreateForm(ctx context.Context, opts CreateFormOptions) (*forms.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := rt.Accounts.Key(opts.Username)
	if err != nil {
		return nil, err
	}

	cfg, err := rt.Forms.Create(opts.Username, opts.Name, opts.Fields, key)
	if err != nil {
		return nil, err
	}

	entry := rt.auditAs(audit.OpFormCreate, opts.Username)
	entry.Form = cfg.Slug
	entry.Columns = len(cfg.Header())
	rt.audit(entry)

	return cfg, nil
}

// UpdateFormOptions configures the update-form workflow.
type UpdateFormOptions struct {
	Username string
	Slug     string

	// Name renames the form when not empty.
	Name   string
	Fields []forms.Field
}

// UpdateFormResult contains the outcome of a schema change.
type UpdateFormResult struct {
	Form      *forms.Config
	Migration *records.MigrateResult
}

// UpdateForm replaces a form's fields and migrates its records by column name.
//
// Returns ErrFormNotFound if the form does not exist.
func (rt *Runtime) UpdateForm(ctx context.Context, opts UpdateFormOptions) (*UpdateFormResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := rt.Accounts.Key(opts.Username)
	if err != nil {
		return nil, err
	}

	cfg, migration, err := rt.Forms.UpdateStructure(opts.Username, opts.Slug, opts.Name, opts.Fields, key)
	if err != nil {
		return nil, err
	}

	entry := rt.auditAs(audit.OpFormUpdate, opts.Username)
	entry.Form = cfg.Slug
	entry.Columns = len(migration.Header)
	rt.audit(entry)

	return &UpdateFormResult{Form: cfg, Migration: migration}, nil
}

// ListForms returns every form of username sorted by name.
func (rt *Runtime) ListForms(ctx context.Context, username string) ([]*forms.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := rt.Accounts.Load(username); err != nil {
		return nil, err
	}
	return rt.Forms.List(username)
}

// ShowForm returns one form definition.
func (rt *Runtime) ShowForm(ctx context.Context, username, slug string) (*forms.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rt.Forms.Load(username, slug)
}

// SetPrivacyOptions configures the privacy workflow.
type SetPrivacyOptions struct {
	Username string
	Slug     string
	Private  bool
}

// SetPrivacy marks a form private or public.
func (rt *Runtime) SetPrivacy(ctx context.Context, opts SetPrivacyOptions) (*forms.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, err := rt.Forms.SetPrivacy(opts.Username, opts.Slug, opts.Private)
	if err != nil {
		return nil, err
	}

	entry := rt.auditAs(audit.OpFormPrivacy, opts.Username)
	entry.Form = cfg.Slug
	entry.Private = &cfg.Private
	rt.audit(entry)

	return cfg, nil
}

// DeleteFormOptions configures the delete-form workflow.
type DeleteFormOptions struct {
	Username string
	Slug     string
}

// DeleteForm removes a form with all of its records and uploads.
func (rt *Runtime) DeleteForm(ctx context.Context, opts DeleteFormOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := rt.Forms.Delete(opts.Username, opts.Slug); err != nil {
		return err
	}

	entry := rt.auditAs(audit.OpFormDelete, opts.Username)
	entry.Form = opts.Slug
	rt.audit(entry)

	return nil
}
