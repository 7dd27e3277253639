// Package audit records structural operations on forms and accounts.
//
// Submissions, row deletions, schema migrations, re-keying cascades and
// temp sweeps are appended to a JSON Lines log in the data directory:
//
//	<data>/audit.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Acting username and user UUID
//   - Operation name
//   - Operation-specific details (form slug, row index, file counts)
//
// Entries never contain submitted values.
//
// # Usage
//
//	entry := audit.NewEntry(audit.OpSubmit, username)
//	entry.Form = slug
//	audit.Log(settings.AuditLogPath(), entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails the operation continues
// without error.
//
// # Reading Logs
//
// ReadEntries parses the log for display. Malformed entries are skipped to
// tolerate partial writes.
package audit
