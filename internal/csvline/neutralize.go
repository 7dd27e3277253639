package csvline

// formulaTriggers are leading characters spreadsheets evaluate as formulas.
const formulaTriggers = "=+-@"

// NeutralizePrefix is prepended to values that would start a formula.
const NeutralizePrefix = "'"

// Neutralize prefixes values starting with a formula trigger so spreadsheet
// applications treat them as text. The change is one-way.
func Neutralize(value string) string {
	if value == "" {
		return value
	}
	for i := 0; i < len(formulaTriggers); i++ {
		if value[0] == formulaTriggers[i] {
			return NeutralizePrefix + value
		}
	}
	return value
}

// NeutralizeRow applies Neutralize to every field and returns a new slice.
func NeutralizeRow(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = Neutralize(f)
	}
	return out
}
