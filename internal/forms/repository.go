package forms

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PolarWolf314/formvault/internal/configs"
	kerrors "github.com/PolarWolf314/formvault/internal/errors"
	logger "github.com/PolarWolf314/formvault/internal/logging"
	"github.com/PolarWolf314/formvault/internal/records"
	"github.com/PolarWolf314/formvault/internal/vault"
)

// Repository stores form definitions under the data directory.
type Repository struct {
	settings *configs.Settings
	store    *records.Store
	log      logger.Logger
}

// NewRepository returns a Repository rooted at settings.DataDir that
// migrates record files through store.
func NewRepository(settings *configs.Settings, store *records.Store, log logger.Logger) *Repository {
	return &Repository{settings: settings, store: store, log: log}
}

// RecordPath returns the record file of a form.
func (r *Repository) RecordPath(username, slug string) string {
	return r.settings.RecordPath(username, slug)
}

// Create defines a new form and writes its record file header.
// The slug is derived from name and suffixed with -2, -3, ... when taken.
func (r *Repository) Create(username, name string, fields []Field, key vault.Key) (*Config, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: form name is required", kerrors.ErrInvalidFormConfig)
	}

	normalized, err := NormalizeFields(fields)
	if err != nil {
		return nil, err
	}

	slug, err := r.claimSlug(username, Slugify(name))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Slug:      slug,
		Name:      name,
		Fields:    normalized,
		APIKey:    NewAPIKey(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	if err := r.Save(username, cfg); err != nil {
		_ = os.RemoveAll(r.settings.FormDir(username, slug))
		return nil, err
	}

	if _, err := r.store.Migrate(r.RecordPath(username, slug), key, FieldNames(normalized)); err != nil {
		_ = os.RemoveAll(r.settings.FormDir(username, slug))
		return nil, fmt.Errorf("creating record file: %w", err)
	}

	r.log.Debugf("Created form %s/%s with %d fields", username, slug, len(normalized))
	return cfg, nil
}

// claimSlug creates the form directory, returning the slug it was created under.
func (r *Repository) claimSlug(username, base string) (string, error) {
	if err := os.MkdirAll(r.settings.FormsDir(username), 0700); err != nil {
		return "", fmt.Errorf("creating forms directory: %w", err)
	}

	slug := base
	for i := 2; ; i++ {
		err := os.Mkdir(r.settings.FormDir(username, slug), 0700)
		if err == nil {
			return slug, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("creating form directory: %w", err)
		}
		slug = base + "-" + strconv.Itoa(i)
	}
}

// Load reads the definition of a form.
func (r *Repository) Load(username, slug string) (*Config, error) {
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("%w: %q", kerrors.ErrFormNotFound, slug)
	}

	path := r.settings.FormConfigPath(username, slug)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrFormNotFound, slug)
	}

	cfg := &Config{}
	if err := configs.LoadTOML(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", kerrors.ErrInvalidFormConfig, slug, err)
	}
	cfg.Slug = slug

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a form definition.
func (r *Repository) Save(username string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := configs.SaveTOML(r.settings.FormConfigPath(username, cfg.Slug), cfg); err != nil {
		return fmt.Errorf("saving form %s: %w", cfg.Slug, err)
	}
	return nil
}

// List returns every form of username, sorted by name then slug.
// Unreadable form definitions are logged and skipped.
func (r *Repository) List(username string) ([]*Config, error) {
	entries, err := os.ReadDir(r.settings.FormsDir(username))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing forms: %w", err)
	}

	var list []*Config
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		cfg, err := r.Load(username, entry.Name())
		if err != nil {
			r.log.Warnf("Skipping form %s: %v", entry.Name(), err)
			continue
		}
		list = append(list, cfg)
	}

	sort.Slice(list, func(i, j int) bool {
		a, b := strings.ToLower(list[i].Name), strings.ToLower(list[j].Name)
		if a != b {
			return a < b
		}
		return list[i].Slug < list[j].Slug
	})
	return list, nil
}

// UpdateStructure replaces a form's fields, optionally renames it, and
// migrates its record file to the new header. The definition is only saved
// once the migration succeeded.
func (r *Repository) UpdateStructure(username, slug, newName string, fields []Field, key vault.Key) (*Config, *records.MigrateResult, error) {
	cfg, err := r.Load(username, slug)
	if err != nil {
		return nil, nil, err
	}

	normalized, err := NormalizeFields(fields)
	if err != nil {
		return nil, nil, err
	}

	result, err := r.store.Migrate(r.RecordPath(username, slug), key, FieldNames(normalized))
	if err != nil {
		return nil, nil, fmt.Errorf("migrating records of %s: %w", slug, err)
	}

	cfg.Fields = normalized
	if name := strings.TrimSpace(newName); name != "" {
		cfg.Name = name
	}
	if err := r.Save(username, cfg); err != nil {
		return nil, nil, err
	}

	return cfg, result, nil
}

// SetPrivacy marks a form private or public.
func (r *Repository) SetPrivacy(username, slug string, private bool) (*Config, error) {
	cfg, err := r.Load(username, slug)
	if err != nil {
		return nil, err
	}
	cfg.Private = private
	if err := r.Save(username, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Delete removes a form with its records and uploads.
func (r *Repository) Delete(username, slug string) error {
	if _, err := r.Load(username, slug); err != nil && errors.Is(err, kerrors.ErrFormNotFound) {
		return err
	}
	if err := os.RemoveAll(r.settings.FormDir(username, slug)); err != nil {
		return fmt.Errorf("deleting form %s: %w", slug, err)
	}
	return nil
}

// FindByAPIKey returns the owner and definition of the form with apiKey.
func (r *Repository) FindByAPIKey(apiKey string) (string, *Config, error) {
	if apiKey == "" {
		return "", nil, kerrors.ErrFormNotFound
	}

	usernames, err := r.settings.ListUsernames()
	if err != nil {
		return "", nil, err
	}

	for _, username := range usernames {
		list, err := r.List(username)
		if err != nil {
			return "", nil, err
		}
		for _, cfg := range list {
			if subtle.ConstantTimeCompare([]byte(cfg.APIKey), []byte(apiKey)) == 1 {
				return username, cfg, nil
			}
		}
	}
	return "", nil, kerrors.ErrFormNotFound
}
