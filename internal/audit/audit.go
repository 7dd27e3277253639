package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Operation names.
const (
	OpRegister       = "register"
	OpPasswordChange = "password_change"
	OpPasswordReset  = "password_reset"
	OpFormCreate     = "form_create"
	OpFormUpdate     = "form_update"
	OpFormPrivacy    = "form_privacy"
	OpFormDelete     = "form_delete"
	OpSubmit         = "submit"
	OpDeleteRow      = "delete_row"
	OpExport         = "export"
	OpRekey          = "rekey"
	OpSweep          = "sweep"
)

// Entry represents a single audit log entry.
type Entry struct {
	ID        string `json:"id"`
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	User      string `json:"user"` // Username performing the action.
	UserUUID  string `json:"uuid,omitempty"`
	Operation string `json:"op"`

	// Optional fields depending on operation.
	Form         string `json:"form,omitempty"`          // Form slug.
	Row          int    `json:"row,omitempty"`           // For delete_row.
	Columns      int    `json:"columns,omitempty"`       // For form_update.
	Private      *bool  `json:"private,omitempty"`       // For form_privacy.
	FilesCount   int    `json:"files_count,omitempty"`   // For rekey.
	FailedCount  int    `json:"failed_count,omitempty"`  // For rekey.
	RemovedCount int    `json:"removed_count,omitempty"` // For sweep.
	Mode         string `json:"mode,omitempty"`          // For export (decrypted/raw).
	OutputPath   string `json:"output_path,omitempty"`   // For export.
}

// NewEntry returns an entry for op performed by user.
func NewEntry(op, user string) Entry {
	return Entry{Operation: op, User: user}
}

// Log appends an entry to the audit log at logPath.
// Failures are ignored; operations should not fail because of auditing.
func Log(logPath string, entry Entry) {
	if logPath == "" {
		return
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the audit log at logPath.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(logPath string) ([]Entry, error) {
	data, err := os.ReadFile(logPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// Filter returns the entries matching user and form. Empty arguments match all.
func Filter(entries []Entry, user, form string) []Entry {
	var out []Entry
	for _, e := range entries {
		if user != "" && e.User != user {
			continue
		}
		if form != "" && e.Form != form {
			continue
		}
		out = append(out, e)
	}
	return out
}
