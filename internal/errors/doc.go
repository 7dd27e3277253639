// Package errors provides typed error values for formvault.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Record errors: record file and row issues (ErrRecordFileNotFound, ErrInvalidRowIndex)
//   - Crypto errors: per-line decryption failures (ErrDecryptFailed, ErrInvalidFraming)
//   - Form errors: form config issues (ErrFormNotFound, ErrNoValidFields)
//   - Account errors: credential issues (ErrUserExists, ErrInvalidCredentials)
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("loading form %s for user %s: %w", slug, username, errors.ErrFormNotFound)
package errors
