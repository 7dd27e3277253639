// Package accounts manages user credentials.
//
// A user's bcrypt hash is the secret behind every record key of that user
// (see vault.DeriveKey), so changing the hash means re-encrypting all of the
// user's record files. ChangePassword and ResetPassword run the re-keying
// cascade before the new hash is saved. If any file fails, files already
// moved to the new key are moved back and the old hash stays in place.
//
// Credentials are stored in <data>/users/<username>/config.toml.
package accounts
