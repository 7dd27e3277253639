// Package forms manages form definitions and turns submissions into rows.
//
// A form lives in its own directory under the owner's forms directory:
//
//	forms/<slug>/form.toml   definition (name, fields, api key, privacy)
//	forms/<slug>/data.csv    encrypted record file, see package records
//	forms/<slug>/uploads/    files attached to submissions
//
// Field definitions are a closed set of typed variants. Only choice types
// (select, select_multiple, radio, checkbox_group) carry options.
//
// Changing a form's fields migrates its record file so the header always
// matches the field names followed by the _submitted_at column.
package forms
