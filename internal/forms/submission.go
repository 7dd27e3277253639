package forms

import (
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/formvault/internal/csvline"
	kerrors "github.com/PolarWolf314/formvault/internal/errors"
)

// MultiValueSeparator joins the values of multi-value fields.
const MultiValueSeparator = "; "

// BuildRow turns submitted values into a record row aligned to cfg.Header().
//
// Values are trimmed and multi-value inputs joined with MultiValueSeparator.
// Text values that a spreadsheet would treat as a formula are neutralized;
// file references are stored as given. The final column is now in RFC 3339.
// Values for names the form does not define are ignored.
func BuildRow(cfg *Config, values map[string][]string, now time.Time) ([]string, error) {
	row := make([]string, 0, len(cfg.Fields)+1)

	for _, f := range cfg.Fields {
		parts := make([]string, 0, len(values[f.Name]))
		for _, v := range values[f.Name] {
			if v = strings.TrimSpace(v); v != "" {
				parts = append(parts, v)
			}
		}
		v := strings.Join(parts, MultiValueSeparator)

		if f.Required && v == "" {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrMissingRequiredField, f.Name)
		}

		if f.Type != TypeFile {
			v = csvline.Neutralize(v)
		}
		row = append(row, v)
	}

	return append(row, now.Format(time.RFC3339)), nil
}

// ParseAssignments parses name=value pairs. A name given several times
// collects several values.
func ParseAssignments(pairs []string) (map[string][]string, error) {
	values := make(map[string][]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid field assignment %q, expected name=value", pair)
		}
		values[name] = append(values[name], value)
	}
	return values, nil
}
