// Package configs manages formvault's settings and per-user credential files.
//
// Configuration is stored in TOML format at two levels:
//
//   - Settings: $XDG_CONFIG_HOME/formvault/config.toml (data directory,
//     admin users, reset token lifetime, temp sweep age)
//   - User config: <data>/users/<username>/config.toml (user UUID, email,
//     credential hash, pending reset token)
//
// # Settings Resolution
//
// Settings are resolved in order, later sources winning:
//
//  1. Built-in defaults ($XDG_DATA_HOME/formvault, admin user "admin")
//  2. The settings file, when present
//  3. FORMVAULT_DATA_DIR and FORMVAULT_ADMIN_USERS
//
// Command-line flags are applied by the cmd package after LoadSettings.
//
// # Data Layout
//
//	<data>/users/<username>/config.toml
//	<data>/users/<username>/forms/<slug>/form.toml
//	<data>/users/<username>/forms/<slug>/data.csv
//	<data>/users/<username>/forms/<slug>/uploads/
//	<data>/audit.jsonl
//
// Settings values are passed explicitly; there are no package-level
// settings globals.
package configs
