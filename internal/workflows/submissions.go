package workflows

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/PolarWolf314/formvault/internal/audit"
	kerrors "github.com/PolarWolf314/formvault/internal/errors"
	"github.com/PolarWolf314/formvault/internal/forms"
	"github.com/PolarWolf314/formvault/internal/records"
)

// SubmitOptions configures the submit workflow.
//
// The form is named either by Username and Slug or by APIKey alone.
type SubmitOptions struct {
	Username string
	Slug     string
	APIKey   string

	// Values maps field names to submitted values.
	Values map[string][]string

	// Files maps file field names to local paths copied into the form's uploads.
	Files map[string]string

	// Now overrides the submission time. Zero means time.Now.
	Now time.Time
}

// SubmitResult contains the outcome of a submission.
type SubmitResult struct {
	Username    string
	Slug        string
	SubmittedAt time.Time
}

// Submit validates a submission and appends it to the form's record file.
//
// Returns ErrFormNotFound if the form does not exist or the API key is unknown.
// Returns ErrAPIKeyMismatch if an API key is given for a different form.
// Returns ErrMissingRequiredField if a required field is empty.
func (rt *Runtime) Submit(ctx context.Context, opts SubmitOptions) (*SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	username, cfg, err := rt.resolveSubmitTarget(opts)
	if err != nil {
		return nil, err
	}

	key, err := rt.Accounts.Key(username)
	if err != nil {
		return nil, err
	}

	values := make(map[string][]string, len(opts.Values)+len(opts.Files))
	for name, v := range opts.Values {
		values[name] = v
	}
	for name, src := range opts.Files {
		field, ok := cfg.Field(name)
		if !ok || field.Type != forms.TypeFile {
			return nil, fmt.Errorf("%w: %s is not a file field", kerrors.ErrInvalidFormConfig, name)
		}
		ref, err := rt.Forms.StoreUpload(username, cfg.Slug, name, src)
		if err != nil {
			return nil, err
		}
		values[name] = []string{ref}
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	row, err := forms.BuildRow(cfg, values, now)
	if err != nil {
		return nil, err
	}

	path := rt.Forms.RecordPath(username, cfg.Slug)
	header := cfg.Header()

	// A record file left behind by an older definition is realigned first.
	existing, err := rt.Store.ReadHeader(path, key)
	if err != nil {
		return nil, err
	}
	if existing != nil && !slices.Equal(existing, header) {
		rt.Log.Infof("Realigning %s to the current form definition", path)
		if _, err := rt.Store.Migrate(path, key, forms.FieldNames(cfg.Fields)); err != nil {
			return nil, err
		}
	}

	if err := rt.Store.Append(path, key, header, row); err != nil {
		return nil, err
	}

	entry := rt.auditAs(audit.OpSubmit, username)
	entry.Form = cfg.Slug
	rt.audit(entry)

	return &SubmitResult{Username: username, Slug: cfg.Slug, SubmittedAt: now}, nil
}

func (rt *Runtime) resolveSubmitTarget(opts SubmitOptions) (string, *forms.Config, error) {
	if opts.APIKey == "" {
		cfg, err := rt.Forms.Load(opts.Username, opts.Slug)
		if err != nil {
			return "", nil, err
		}
		return opts.Username, cfg, nil
	}

	username, cfg, err := rt.Forms.FindByAPIKey(opts.APIKey)
	if err != nil {
		return "", nil, err
	}
	if (opts.Username != "" && opts.Username != username) || (opts.Slug != "" && opts.Slug != cfg.Slug) {
		return "", nil, kerrors.ErrAPIKeyMismatch
	}
	return username, cfg, nil
}

// ListSubmissionsOptions configures the list-submissions workflow.
type ListSubmissionsOptions struct {
	Username string
	Slug     string
}

// ListSubmissions decrypts a form's records. Lines that fail to decrypt
// are reported in the table's Issues rather than failing the listing.
func (rt *Runtime) ListSubmissions(ctx context.Context, opts ListSubmissionsOptions) (*records.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, key, err := rt.openForm(opts.Username, opts.Slug)
	if err != nil {
		return nil, err
	}

	table, err := rt.Store.ScanAll(rt.Forms.RecordPath(opts.Username, cfg.Slug), key)
	if err != nil {
		return nil, err
	}
	if table.Header == nil {
		table.Header = cfg.Header()
	}
	return table, nil
}

// DeleteSubmissionOptions configures the delete-submission workflow.
type DeleteSubmissionOptions struct {
	Username string
	Slug     string

	// Index is the 1-based data row index as shown by ListSubmissions.
	Index int
}

// DeleteSubmission removes one data row from a form's record file.
// An index past the last row leaves the file as it was.
//
// Returns ErrInvalidRowIndex if Index is below 1.
// Returns ErrRecordFileNotFound if the form has no record file.
func (rt *Runtime) DeleteSubmission(ctx context.Context, opts DeleteSubmissionOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if opts.Index < 1 {
		return fmt.Errorf("%w: %d", kerrors.ErrInvalidRowIndex, opts.Index)
	}

	cfg, err := rt.Forms.Load(opts.Username, opts.Slug)
	if err != nil {
		return err
	}

	ok, err := rt.Store.DeleteRow(rt.Forms.RecordPath(opts.Username, cfg.Slug), opts.Index)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", kerrors.ErrRecordFileNotFound, cfg.Slug)
	}

	entry := rt.auditAs(audit.OpDeleteRow, opts.Username)
	entry.Form = cfg.Slug
	entry.Row = opts.Index
	rt.audit(entry)

	return nil
}

// ExportOptions configures the export workflow.
type ExportOptions struct {
	Username string
	Slug     string
	Mode     forms.ExportMode

	// Out receives the CSV.
	Out io.Writer

	// OutputPath names the destination in the audit log. Empty means stdout.
	OutputPath string
}

// ExportResult contains the outcome of an export.
type ExportResult struct {
	Rows int

	// Skipped counts undecryptable lines left out of a decrypted export.
	Skipped int
}

// Export writes a form's records as CSV, either decrypted or with the data
// lines still encrypted.
func (rt *Runtime) Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == "" {
		mode = forms.ExportDecrypted
	}

	cfg, key, err := rt.openForm(opts.Username, opts.Slug)
	if err != nil {
		return nil, err
	}
	path := rt.Forms.RecordPath(opts.Username, cfg.Slug)

	result := &ExportResult{}
	switch mode {
	case forms.ExportRaw:
		n, err := rt.Store.ExportRaw(opts.Out, path, key)
		if err != nil {
			return nil, err
		}
		result.Rows = n
	case forms.ExportDecrypted:
		table, err := rt.Store.ScanAll(path, key)
		if err != nil {
			return nil, err
		}
		n, err := forms.WriteTable(opts.Out, table)
		if err != nil {
			return nil, fmt.Errorf("writing export: %w", err)
		}
		result.Rows = n
		result.Skipped = len(table.Issues)
	default:
		return nil, fmt.Errorf("unknown export mode %q", mode)
	}

	entry := rt.auditAs(audit.OpExport, opts.Username)
	entry.Form = cfg.Slug
	entry.Mode = string(mode)
	entry.OutputPath = opts.OutputPath
	rt.audit(entry)

	return result, nil
}
