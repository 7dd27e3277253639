package forms

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	kerrors "github.com/PolarWolf314/formvault/internal/errors"
	"github.com/PolarWolf314/formvault/internal/vault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateForm(t *testing.T) {
	repo, store, settings := newTestRepo(t)
	key := testKey()

	cfg, err := repo.Create("jane", "Contact Us", contactFields(), key)
	require.NoError(t, err)

	assert.Equal(t, "contact-us", cfg.Slug)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{24}$`), cfg.APIKey)
	assert.False(t, cfg.CreatedAt.IsZero())
	assert.FileExists(t, settings.FormConfigPath("jane", "contact-us"))

	header, err := store.ReadHeader(repo.RecordPath("jane", "contact-us"), key)
	require.NoError(t, err)
	assert.Equal(t, []string{"fullName", "email", "topics", "_submitted_at"}, header)

	loaded, err := repo.Load("jane", "contact-us")
	require.NoError(t, err)
	assert.Equal(t, cfg.Fields, loaded.Fields)
	assert.Equal(t, cfg.APIKey, loaded.APIKey)
	assert.True(t, cfg.CreatedAt.Equal(loaded.CreatedAt))
}

func TestCreateFormUniqueSlug(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	first, err := repo.Create("jane", "Survey", contactFields(), testKey())
	require.NoError(t, err)
	second, err := repo.Create("jane", "survey!", contactFields(), testKey())
	require.NoError(t, err)

	assert.Equal(t, "survey", first.Slug)
	assert.Equal(t, "survey-2", second.Slug)
	assert.NotEqual(t, first.APIKey, second.APIKey)
}

func TestCreateFormRejectsInvalidInput(t *testing.T) {
	repo, _, settings := newTestRepo(t)

	_, err := repo.Create("jane", "  ", contactFields(), testKey())
	assert.ErrorIs(t, err, kerrors.ErrInvalidFormConfig)

	_, err = repo.Create("jane", "Empty", []Field{{Name: "x"}}, testKey())
	assert.ErrorIs(t, err, kerrors.ErrNoValidFields)

	_, err = os.Stat(settings.FormDir("jane", "empty"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadMissingOrInvalidSlug(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	_, err := repo.Load("jane", "nope")
	assert.ErrorIs(t, err, kerrors.ErrFormNotFound)

	_, err = repo.Load("jane", "../other")
	assert.ErrorIs(t, err, kerrors.ErrFormNotFound)
}

func TestListFormsSorted(t *testing.T) {
	repo, _, settings := newTestRepo(t)

	for _, name := range []string{"zeta", "Alpha", "beta"} {
		_, err := repo.Create("jane", name, contactFields(), testKey())
		require.NoError(t, err)
	}
	require.NoError(t, os.MkdirAll(settings.FormDir("jane", "broken"), 0700))
	require.NoError(t, os.WriteFile(settings.FormConfigPath("jane", "broken"), []byte("name = 3"), 0600))

	list, err := repo.List("jane")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Alpha", list[0].Name)
	assert.Equal(t, "beta", list[1].Name)
	assert.Equal(t, "zeta", list[2].Name)

	none, err := repo.List("bob")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateStructureMigratesRecords(t *testing.T) {
	repo, store, _ := newTestRepo(t)
	key := testKey()

	cfg, err := repo.Create("jane", "Contact", contactFields()[:2], key)
	require.NoError(t, err)
	path := repo.RecordPath("jane", cfg.Slug)
	require.NoError(t, store.Append(path, key, cfg.Header(), []string{"Jane", "jane@x.com", "2024-01-01T00:00:00Z"}))

	updated, result, err := repo.UpdateStructure("jane", cfg.Slug, "Contact form", []Field{
		{Name: "email", Label: "Email", Type: TypeEmail},
		{Name: "phone", Label: "Phone", Type: TypeTel},
	}, key)
	require.NoError(t, err)

	assert.Equal(t, "Contact form", updated.Name)
	assert.Equal(t, 1, result.Rows)

	table, err := store.ScanAll(path, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "phone", "_submitted_at"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"jane@x.com", "", "2024-01-01T00:00:00Z"}, table.Rows[0].Fields)

	loaded, err := repo.Load("jane", cfg.Slug)
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "phone"}, FieldNames(loaded.Fields))
}

func TestUpdateStructureKeepsConfigWhenMigrationFails(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	cfg, err := repo.Create("jane", "Contact", contactFields(), testKey())
	require.NoError(t, err)

	wrong := vault.DeriveKey("jane", "other")
	_, _, err = repo.UpdateStructure("jane", cfg.Slug, "", []Field{{Name: "x", Label: "X"}}, wrong)
	if err == nil {
		// A wrong key can pass CBC padding by chance; nothing more to check.
		t.Skip("wrong key decrypted the header")
	}

	loaded, err := repo.Load("jane", cfg.Slug)
	require.NoError(t, err)
	assert.Equal(t, FieldNames(cfg.Fields), FieldNames(loaded.Fields))
}

func TestSetPrivacy(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	cfg, err := repo.Create("jane", "Contact", contactFields(), testKey())
	require.NoError(t, err)

	updated, err := repo.SetPrivacy("jane", cfg.Slug, true)
	require.NoError(t, err)
	assert.True(t, updated.Private)

	loaded, err := repo.Load("jane", cfg.Slug)
	require.NoError(t, err)
	assert.True(t, loaded.Private)

	_, err = repo.SetPrivacy("jane", "missing", true)
	assert.ErrorIs(t, err, kerrors.ErrFormNotFound)
}

func TestDeleteForm(t *testing.T) {
	repo, _, settings := newTestRepo(t)
	cfg, err := repo.Create("jane", "Contact", contactFields(), testKey())
	require.NoError(t, err)

	require.NoError(t, repo.Delete("jane", cfg.Slug))
	assert.NoDirExists(t, settings.FormDir("jane", cfg.Slug))

	assert.ErrorIs(t, repo.Delete("jane", cfg.Slug), kerrors.ErrFormNotFound)
}

func TestFindByAPIKey(t *testing.T) {
	repo, _, settings := newTestRepo(t)
	for _, u := range []string{"jane", "bob"} {
		require.NoError(t, settings.SaveUserConfig(userConfig(u)))
	}

	_, err := repo.Create("jane", "Contact", contactFields(), testKey())
	require.NoError(t, err)
	bobs, err := repo.Create("bob", "Feedback", contactFields(), vault.DeriveKey("bob", "s"))
	require.NoError(t, err)

	owner, cfg, err := repo.FindByAPIKey(bobs.APIKey)
	require.NoError(t, err)
	assert.Equal(t, "bob", owner)
	assert.Equal(t, "feedback", cfg.Slug)

	_, _, err = repo.FindByAPIKey("000000000000000000000000")
	assert.ErrorIs(t, err, kerrors.ErrFormNotFound)
}

func TestStoreUpload(t *testing.T) {
	repo, _, settings := newTestRepo(t)
	cfg, err := repo.Create("jane", "Contact", []Field{{Name: "cv", Label: "CV", Type: TypeFile}}, testKey())
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "Resume.P-D-F")
	require.NoError(t, os.WriteFile(src, []byte("pdf"), 0600))

	ref, err := repo.StoreUpload("jane", cfg.Slug, "cv", src)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^uploads/cv-\d{14}-[0-9a-f]{8}\.pdf$`), ref)

	data, err := os.ReadFile(filepath.Join(settings.FormDir("jane", cfg.Slug), filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(data))
}
