package forms

import (
	"fmt"
	"regexp"
	"strings"

	kerrors "github.com/PolarWolf314/formvault/internal/errors"
	"github.com/PolarWolf314/formvault/internal/records"

	"github.com/go-playground/validator/v10"
)

// FieldType is the input type of a form field.
type FieldType string

const (
	TypeText           FieldType = "text"
	TypePassword       FieldType = "password"
	TypeTextarea       FieldType = "textarea"
	TypeFile           FieldType = "file"
	TypeSelect         FieldType = "select"
	TypeSelectMultiple FieldType = "select_multiple"
	TypeRadio          FieldType = "radio"
	TypeCheckbox       FieldType = "checkbox"
	TypeCheckboxGroup  FieldType = "checkbox_group"
	TypeEmail          FieldType = "email"
	TypeNumber         FieldType = "number"
	TypeURL            FieldType = "url"
	TypeTel            FieldType = "tel"
	TypeDate           FieldType = "date"
	TypeTime           FieldType = "time"
	TypeDateTimeLocal  FieldType = "datetime-local"
)

// FieldTypes lists every supported field type.
var FieldTypes = []FieldType{
	TypeText, TypePassword, TypeTextarea, TypeFile,
	TypeSelect, TypeSelectMultiple, TypeRadio, TypeCheckbox, TypeCheckboxGroup,
	TypeEmail, TypeNumber, TypeURL, TypeTel, TypeDate, TypeTime, TypeDateTimeLocal,
}

// Valid reports whether t is a supported field type.
func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsChoice reports whether fields of type t carry options.
func (t FieldType) IsChoice() bool {
	switch t {
	case TypeSelect, TypeSelectMultiple, TypeRadio, TypeCheckboxGroup:
		return true
	}
	return false
}

// IsMulti reports whether fields of type t accept several values.
func (t FieldType) IsMulti() bool {
	return t == TypeSelectMultiple || t == TypeCheckboxGroup
}

// Field is one input of a form.
type Field struct {
	Name     string    `toml:"name" validate:"required,fieldname"`
	Label    string    `toml:"label" validate:"required"`
	Type     FieldType `toml:"type" validate:"fieldtype"`
	Required bool      `toml:"required,omitempty"`
	Options  []string  `toml:"options,omitempty" validate:"omitempty,dive,required"`
}

var (
	fieldNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	fieldNameStrip   = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("fieldname", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return fieldNamePattern.MatchString(name) && name != records.TimestampColumn
	})
	_ = v.RegisterValidation("fieldtype", func(fl validator.FieldLevel) bool {
		return FieldType(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks a single field definition.
func (f Field) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: field %q: %w", kerrors.ErrInvalidFormConfig, f.Name, err)
	}
	if len(f.Options) > 0 && !f.Type.IsChoice() {
		return fmt.Errorf("%w: field %q: type %s does not take options", kerrors.ErrInvalidFormConfig, f.Name, f.Type)
	}
	return nil
}

// NormalizeFields cleans user-supplied field definitions.
//
// Names are stripped to [A-Za-z0-9_-]; fields with an empty name or label
// are dropped, as are later duplicates of a name and the reserved
// timestamp column. Unknown types become text. Options are trimmed, empties
// dropped, and kept only for choice types. At least one field must remain.
func NormalizeFields(raw []Field) ([]Field, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]Field, 0, len(raw))

	for _, f := range raw {
		name := fieldNameStrip.ReplaceAllString(f.Name, "")
		label := strings.TrimSpace(f.Label)
		if name == "" || label == "" || name == records.TimestampColumn {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		typ := FieldType(strings.TrimSpace(string(f.Type)))
		if !typ.Valid() {
			typ = TypeText
		}

		field := Field{Name: name, Label: label, Type: typ, Required: f.Required}
		if typ.IsChoice() {
			for _, opt := range f.Options {
				if opt = strings.TrimSpace(opt); opt != "" {
					field.Options = append(field.Options, opt)
				}
			}
		}

		if err := field.Validate(); err != nil {
			return nil, err
		}
		out = append(out, field)
	}

	if len(out) == 0 {
		return nil, kerrors.ErrNoValidFields
	}
	return out, nil
}

// FieldNames returns the names of fields in order.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Header returns the record file header for fields.
func Header(fields []Field) []string {
	return records.TargetHeader(FieldNames(fields))
}
