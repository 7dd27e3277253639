package configs

import (
	"path/filepath"
)

const (
	usersDirName     = "users"
	formsDirName     = "forms"
	uploadsDirName   = "uploads"
	userConfigName   = "config.toml"
	formConfigName   = "form.toml"
	recordFileName   = "data.csv"
	auditLogFileName = "audit.jsonl"
)

// UsersDir returns the directory holding every user's data.
func (s *Settings) UsersDir() string {
	return filepath.Join(s.DataDir, usersDirName)
}

// UserDir returns the data directory of username.
func (s *Settings) UserDir(username string) string {
	return filepath.Join(s.UsersDir(), username)
}

// UserConfigPath returns the path of username's credential file.
func (s *Settings) UserConfigPath(username string) string {
	return filepath.Join(s.UserDir(username), userConfigName)
}

// FormsDir returns the directory holding username's forms.
func (s *Settings) FormsDir(username string) string {
	return filepath.Join(s.UserDir(username), formsDirName)
}

// FormDir returns the directory of one form.
func (s *Settings) FormDir(username, slug string) string {
	return filepath.Join(s.FormsDir(username), slug)
}

// FormConfigPath returns the path of a form's config file.
func (s *Settings) FormConfigPath(username, slug string) string {
	return filepath.Join(s.FormDir(username, slug), formConfigName)
}

// RecordPath returns the path of a form's record file.
func (s *Settings) RecordPath(username, slug string) string {
	return filepath.Join(s.FormDir(username, slug), recordFileName)
}

// UploadsDir returns the directory for a form's uploaded files.
func (s *Settings) UploadsDir(username, slug string) string {
	return filepath.Join(s.FormDir(username, slug), uploadsDirName)
}

// AuditLogPath returns the path of the audit log.
func (s *Settings) AuditLogPath() string {
	return filepath.Join(s.DataDir, auditLogFileName)
}
