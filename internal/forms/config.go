package forms

import (
	"fmt"
	"time"

	"github.com/PolarWolf314/formvault/internal/configs"
	kerrors "github.com/PolarWolf314/formvault/internal/errors"
)

// APIKeyBytes is the number of random bytes in a form API key.
const APIKeyBytes = 12

// Config is the stored definition of a form.
type Config struct {
	// Slug is the form's directory name; it is not stored in form.toml.
	Slug string `toml:"-"`

	Name      string    `toml:"name" validate:"required"`
	Fields    []Field   `toml:"fields" validate:"required,min=1,dive"`
	APIKey    string    `toml:"api_key" validate:"required,hexadecimal,len=24"`
	Private   bool      `toml:"private,omitempty"`
	CreatedAt time.Time `toml:"created_at"`
}

// Validate checks the whole form definition.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrInvalidFormConfig, err)
	}
	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if err := f.Validate(); err != nil {
			return err
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", kerrors.ErrInvalidFormConfig, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Header returns the record file header for the form.
func (c *Config) Header() []string {
	return Header(c.Fields)
}

// Field returns the field called name.
func (c *Config) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// NewAPIKey returns a random 24 character hex API key.
func NewAPIKey() string {
	return randomHex(APIKeyBytes)
}

// Schema is the on-disk format of a field list given to create or edit a form.
type Schema struct {
	Name   string  `toml:"name"`
	Fields []Field `toml:"fields"`
}

// LoadSchema reads a schema file. Fields are not normalized.
func LoadSchema(path string) (*Schema, error) {
	schema := &Schema{}
	if err := configs.LoadTOML(path, schema); err != nil {
		return nil, fmt.Errorf("%w: reading schema %s: %w", kerrors.ErrInvalidFormConfig, path, err)
	}
	return schema, nil
}
