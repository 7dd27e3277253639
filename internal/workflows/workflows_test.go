package workflows

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PolarWolf314/formvault/internal/audit"
	"github.com/PolarWolf314/formvault/internal/configs"
	kerrors "github.com/PolarWolf314/formvault/internal/errors"
	"github.com/PolarWolf314/formvault/internal/forms"
	logger "github.com/PolarWolf314/formvault/internal/logging"
	"github.com/PolarWolf314/formvault/internal/vault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const password = "correct horse"

var fixedTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	return NewRuntime(RuntimeOptions{
		Settings: &configs.Settings{
			DataDir:       t.TempDir(),
			AdminUsers:    []string{"admin"},
			ResetTokenTTL: "1h",
			SweepMinAge:   "10m",
		},
		Logger:     logger.Logger{Out: io.Discard, Err: io.Discard},
		BcryptCost: bcrypt.MinCost,
	})
}

func registerUser(t *testing.T, rt *Runtime, username string) {
	t.Helper()
	_, err := rt.Register(context.Background(), RegisterOptions{
		Username: username,
		Password: password,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
}

func createContactForm(t *testing.T, rt *Runtime, username string) *forms.Config {
	t.Helper()
	cfg, err := rt.CreateForm(context.Background(), CreateFormOptions{
		Username: username,
		Name:     "Contact",
		Fields: []forms.Field{
			{Name: "fullName", Label: "Full name", Type: forms.TypeText, Required: true},
			{Name: "message", Label: "Message", Type: forms.TypeTextarea},
		},
	})
	require.NoError(t, err)
	return cfg
}

func submit(t *testing.T, rt *Runtime, username, slug, name, message string) {
	t.Helper()
	_, err := rt.Submit(context.Background(), SubmitOptions{
		Username: username,
		Slug:     slug,
		Values:   map[string][]string{"fullName": {name}, "message": {message}},
		Now:      fixedTime,
	})
	require.NoError(t, err)
}

func auditOps(t *testing.T, rt *Runtime) []string {
	t.Helper()
	entries, err := audit.ReadEntries(rt.Settings.AuditLogPath())
	require.NoError(t, err)
	ops := make([]string, len(entries))
	for i, e := range entries {
		ops[i] = e.Operation
	}
	return ops
}

func TestSubmitAndList(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "jane")
	cfg := createContactForm(t, rt, "jane")

	submit(t, rt, "jane", cfg.Slug, "Jane Doe", "=HYPERLINK(\"x\")")
	submit(t, rt, "jane", cfg.Slug, "John, Jr.", "hi")

	table, err := rt.ListSubmissions(context.Background(), ListSubmissionsOptions{Username: "jane", Slug: cfg.Slug})
	require.NoError(t, err)

	assert.Equal(t, []string{"fullName", "message", "_submitted_at"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Jane Doe", "'=HYPERLINK(\"x\")", "2024-06-01T09:00:00Z"}, table.Rows[0].Fields)
	assert.Equal(t, "John, Jr.", table.Rows[1].Fields[0])

	data, err := os.ReadFile(rt.Forms.RecordPath("jane", cfg.Slug))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Jane Doe")

	assert.Equal(t, []string{audit.OpRegister, audit.OpFormCreate, audit.OpSubmit, audit.OpSubmit}, auditOps(t, rt))
}

func TestSubmitRequiredField(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "jane")
	cfg := createContactForm(t, rt, "jane")

	_, err := rt.Submit(context.Background(), SubmitOptions{
		Username: "jane",
		Slug:     cfg.Slug,
		Values:   map[string][]string{"message": {"no name"}},
	})
	assert.ErrorIs(t, err, kerrors.ErrMissingRequiredField)
}

func TestSubmitByAPIKey(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "jane")
	registerUser(t, rt, "bob")
	cfg := createContactForm(t, rt, "jane")

	result, err := rt.Submit(context.Background(), SubmitOptions{
		APIKey: cfg.APIKey,
		Values: map[string][]string{"fullName": {"Via API"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "jane", result.Username)

	_, err = rt.Submit(context.Background(), SubmitOptions{
		Username: "bob",
		APIKey:   cfg.APIKey,
		Values:   map[string][]string{"fullName": {"x"}},
	})
	assert.ErrorIs(t, err, kerrors.ErrAPIKeyMismatch)

	_, err = rt.Submit(context.Background(), SubmitOptions{APIKey: "ffffffffffffffffffffffff"})
	assert.ErrorIs(t, err, kerrors.ErrFormNotFound)
}

func TestSubmitWithFile(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "jane")
	cfg, err := rt.CreateForm(context.Background(), CreateFormOptions{
		Username: "jane",
		Name:     "Jobs",
		Fields: []forms.Field{
			{Name: "name", Label: "Name", Type: forms.TypeText},
			{Name: "cv", Label: "CV", Type: forms.TypeFile, Required: true},
		},
	})
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(src, []byte("resume"), 0600))

	_, err = rt.Submit(context.Background(), SubmitOptions{
		Username: "jane",
		Slug:     cfg.Slug,
		Values:   map[string][]string{"name": {"Jane"}},
		Files:    map[string]string{"cv": src},
	})
	require.NoError(t, err)

	table, err := rt.ListSubmissions(context.Background(), ListSubmissionsOptions{Username: "jane", Slug: cfg.Slug})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.True(t, strings.HasPrefix(table.Rows[0].Fields[1], "uploads/cv-"))

	_, err = rt.Submit(context.Background(), SubmitOptions{
		Username: "jane",
		Slug:     cfg.Slug,
		Files:    map[string]string{"name": src},
	})
	assert.ErrorIs(t, err, kerrors.ErrInvalidFormConfig)
}

func TestUpdateFormMigratesAndSubmitFollows(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "jane")
	cfg := createContactForm(t, rt, "jane")
	submit(t, rt, "jane", cfg.Slug, "Jane", "first")

	result, err := rt.UpdateForm(context.Background(), UpdateFormOptions{
		Username: "jane",
		Slug:     cfg.Slug,
		Fields: []forms.Field{
			{Name: "email", Label: "Email", Type: forms.TypeEmail},
			{Name: "fullName", Label: "Full name", Type: forms.TypeText},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Migration.Rows)

	_, err = rt.Submit(context.Background(), SubmitOptions{
		Username: "jane",
		Slug:     cfg.Slug,
		Values:   map[string][]string{"email": {"b@x.com"}, "fullName": {"Bob"}},
		Now:      fixedTime,
	})
	require.NoError(t, err)

	table, err := rt.ListSubmissions(context.Background(), ListSubmissionsOptions{Username: "jane", Slug: cfg.Slug})
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "fullName", "_submitted_at"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"", "Jane", "2024-06-01T09:00:00Z"}, table.Rows[0].Fields)
	assert.Equal(t, []string{"b@x.com", "Bob", "2024-06-01T09:00:00Z"}, table.Rows[1].Fields)
}

func TestDeleteSubmission(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "jane")
	cfg := createContactForm(t, rt, "jane")
	for _, n := range []string{"A", "B", "C"} {
		submit(t, rt, "jane", cfg.Slug, n, "")
	}

	require.NoError(t, rt.DeleteSubmission(context.Background(), DeleteSubmissionOptions{Username: "jane", Slug: cfg.Slug, Index: 2}))

	table, err := rt.ListSubmissions(context.Background(), ListSubmissionsOptions{Username: "jane", Slug: cfg.Slug})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "A", table.Rows[0].Fields[0])
	assert.Equal(t, "C", table.Rows[1].Fields[0])

	err = rt.DeleteSubmission(context.Background(), DeleteSubmissionOptions{Username: "jane", Slug: cfg.Slug, Index: 0})
	assert.ErrorIs(t, err, kerrors.ErrInvalidRowIndex)

	require.NoError(t, os.Remove(rt.Forms.RecordPath("jane", cfg.Slug)))
	err = rt.DeleteSubmission(context.Background(), DeleteSubmissionOptions{Username: "jane", Slug: cfg.Slug, Index: 1})
	assert.ErrorIs(t, err, kerrors.ErrRecordFileNotFound)
}

func TestExport(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "jane")
	cfg := createContactForm(t, rt, "jane")
	submit(t, rt, "jane", cfg.Slug, "Jane Doe", "hello world")

	var plain bytes.Buffer
	result, err := rt.Export(context.Background(), ExportOptions{Username: "jane", Slug: cfg.Slug, Out: &plain})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, "fullName,message,_submitted_at\n\"Jane Doe\",\"hello world\",2024-06-01T09:00:00Z\n", plain.String())

	var raw bytes.Buffer
	result, err = rt.Export(context.Background(), ExportOptions{Username: "jane", Slug: cfg.Slug, Mode: forms.ExportRaw, Out: &raw})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)
	lines := strings.Split(strings.TrimSpace(raw.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "fullName,message,_submitted_at", lines[0])
	assert.True(t, vault.IsEncrypted(lines[1]))
}

func TestChangePasswordKeepsRecordsReadable(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "jane")
	cfg := createContactForm(t, rt, "jane")
	submit(t, rt, "jane", cfg.Slug, "Jane", "before")

	result, err := rt.ChangePassword(context.Background(), ChangePasswordOptions{
		Username:        "jane",
		CurrentPassword: password,
		NewPassword:     "battery staple",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesRekeyed)

	submit(t, rt, "jane", cfg.Slug, "Jane", "after")

	table, err := rt.ListSubmissions(context.Background(), ListSubmissionsOptions{Username: "jane", Slug: cfg.Slug})
	require.NoError(t, err)
	assert.Empty(t, table.Issues)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "before", table.Rows[0].Fields[1])
	assert.Equal(t, "after", table.Rows[1].Fields[1])

	assert.Contains(t, auditOps(t, rt), audit.OpRekey)
}

func TestResetPasswordWorkflow(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "jane")
	cfg := createContactForm(t, rt, "jane")
	submit(t, rt, "jane", cfg.Slug, "Jane", "kept")

	token, err := rt.RequestReset(context.Background(), RequestResetOptions{Username: "jane"})
	require.NoError(t, err)

	_, err = rt.ResetPassword(context.Background(), ResetPasswordOptions{Username: "jane", Token: token.Token, NewPassword: "new one"})
	require.NoError(t, err)

	table, err := rt.ListSubmissions(context.Background(), ListSubmissionsOptions{Username: "jane", Slug: cfg.Slug})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "kept", table.Rows[0].Fields[1])
}

func TestFormLifecycle(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "jane")
	cfg := createContactForm(t, rt, "jane")

	updated, err := rt.SetPrivacy(context.Background(), SetPrivacyOptions{Username: "jane", Slug: cfg.Slug, Private: true})
	require.NoError(t, err)
	assert.True(t, updated.Private)

	list, err := rt.ListForms(context.Background(), "jane")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Private)

	require.NoError(t, rt.DeleteForm(context.Background(), DeleteFormOptions{Username: "jane", Slug: cfg.Slug}))

	_, err = rt.ShowForm(context.Background(), "jane", cfg.Slug)
	assert.ErrorIs(t, err, kerrors.ErrFormNotFound)

	_, err = rt.ListForms(context.Background(), "nobody")
	assert.ErrorIs(t, err, kerrors.ErrUserNotFound)
}

func TestAdminWorkflows(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "admin")
	registerUser(t, rt, "jane")
	createContactForm(t, rt, "jane")

	_, err := rt.ListUsers(context.Background(), ListUsersOptions{Actor: "jane", Password: password})
	assert.ErrorIs(t, err, kerrors.ErrPermissionDenied)

	_, err = rt.ListUsers(context.Background(), ListUsersOptions{Actor: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, kerrors.ErrInvalidCredentials)

	users, err := rt.ListUsers(context.Background(), ListUsersOptions{Actor: "admin", Password: password})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.True(t, users[0].Admin)
	assert.Equal(t, 1, users[1].Forms)

	stale := filepath.Join(rt.Settings.FormDir("jane", "contact"), "data.csv.123.tmp")
	require.NoError(t, os.WriteFile(stale, []byte("partial"), 0600))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	swept, err := rt.Sweep(context.Background(), SweepOptions{Actor: "admin", Password: password})
	require.NoError(t, err)
	assert.Equal(t, []string{stale}, swept.Removed)

	entries, err := rt.AuditLog(context.Background(), AuditLogOptions{Actor: "admin", Password: password, User: "jane"})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, "jane", e.User)
	}
}

func TestSubmitStoresUploads(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "jane")
	ctx := context.Background()

	cfg, err := rt.CreateForm(ctx, CreateFormOptions{
		Username: "jane",
		Name:     "Applications",
		Fields: []forms.Field{
			{Name: "fullName", Label: "Full name", Type: forms.TypeText},
			{Name: "cv", Label: "CV", Type: forms.TypeFile},
		},
	})
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "My CV.PDF")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0600))

	_, err = rt.Submit(ctx, SubmitOptions{
		Username: "jane",
		Slug:     cfg.Slug,
		Values:   map[string][]string{"fullName": {"Jane"}},
		Files:    map[string]string{"cv": src},
		Now:      fixedTime,
	})
	require.NoError(t, err)

	table, err := rt.ListSubmissions(ctx, ListSubmissionsOptions{Username: "jane", Slug: cfg.Slug})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	ref := table.Rows[0].Fields[1]
	assert.True(t, strings.HasPrefix(ref, "uploads/cv-"), ref)
	assert.True(t, strings.HasSuffix(ref, ".pdf"), ref)

	data, err := os.ReadFile(filepath.Join(rt.Settings.FormDir("jane", cfg.Slug), filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestSubmitRejectsFileForNonFileField(t *testing.T) {
	rt := newTestRuntime(t)
	registerUser(t, rt, "jane")
	cfg := createContactForm(t, rt, "jane")

	src := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(src, []byte("hi"), 0600))

	_, err := rt.Submit(context.Background(), SubmitOptions{
		Username: "jane",
		Slug:     cfg.Slug,
		Values:   map[string][]string{"fullName": {"Jane"}},
		Files:    map[string]string{"message": src},
	})
	assert.ErrorIs(t, err, kerrors.ErrInvalidFormConfig)
}
