package errors

import "errors"

// Record errors indicate issues with a form's record file.
var (
	// ErrRecordFileNotFound indicates the record file does not exist.
	ErrRecordFileNotFound = errors.New("record file not found")

	// ErrInvalidRowIndex indicates a row index below 1 was requested.
	ErrInvalidRowIndex = errors.New("row index must be 1 or greater")

	// ErrColumnMismatch indicates a row does not have the header's column count.
	ErrColumnMismatch = errors.New("row column count does not match header")

	// ErrAtomicWriteFailed indicates a temp-then-rename rewrite did not complete.
	// The original file is left untouched when this is returned.
	ErrAtomicWriteFailed = errors.New("atomic rewrite failed")
)

// Cryptographic errors indicate failures while handling encrypted lines.
var (
	// ErrDecryptFailed indicates a line carried the encryption tag but could not be decrypted.
	ErrDecryptFailed = errors.New("failed to decrypt line")

	// ErrInvalidFraming indicates an encrypted line is not tag:iv:ciphertext.
	ErrInvalidFraming = errors.New("invalid encrypted line framing")

	// ErrInvalidPadding indicates the decrypted block had malformed PKCS#7 padding.
	ErrInvalidPadding = errors.New("invalid padding")
)

// Form errors indicate issues with form configuration.
var (
	// ErrFormNotFound indicates the form config could not be located.
	ErrFormNotFound = errors.New("form not found")

	// ErrInvalidFormConfig indicates the form config is malformed.
	ErrInvalidFormConfig = errors.New("form configuration is invalid")

	// ErrNoValidFields indicates a schema update contained no usable fields.
	ErrNoValidFields = errors.New("form has no valid fields")

	// ErrMissingRequiredField indicates a submission lacked a required value.
	ErrMissingRequiredField = errors.New("missing required field")
)

// Account errors indicate issues with user credentials.
var (
	// ErrUserExists indicates the username is already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrEmailTaken indicates the email is already registered to another user.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUserNotFound indicates the user could not be found.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidUsername indicates the username contains unsupported characters.
	ErrInvalidUsername = errors.New("username contains invalid characters")

	// ErrInvalidEmail indicates the email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidCredentials indicates the username or password did not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidResetToken indicates a reset token is unknown or expired.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrPermissionDenied indicates the acting user is not an admin.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAPIKeyMismatch indicates an API key does not belong to the named form.
	ErrAPIKeyMismatch = errors.New("api key does not match form")
)
