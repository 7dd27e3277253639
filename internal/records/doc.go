// Package records owns the on-disk layout of a form's record file.
//
// A record file holds one line per row. Line 1 is the header (column names,
// the last always TimestampColumn); every following line is one submission.
// Each line is encrypted independently by the vault package, so the file
// has no file-level IV and lines can be appended without rewriting.
//
// # Operations
//
//   - Append writes one encrypted line with a single O_APPEND write, creating
//     the file with an encrypted header first when needed.
//   - ScanAll decrypts and decodes every line. Lines that fail to decrypt are
//     reported as LineIssue values and never abort the scan.
//   - DeleteRow, Migrate and the re-keying cascade rewrite the whole file into
//     a temp file in the same directory and rename it over the original.
//
// # Row Index
//
// Data rows are addressed by their 1-based position among data lines,
// header excluded. The index is not stable across deletions.
//
// # Concurrency
//
// Structural writes on one path are serialized through a Locks registry
// shared by every Store built from it. This only covers a single process;
// separate processes writing the same data directory must coordinate
// externally. A crash during a rewrite leaves the original intact plus an
// orphaned *.tmp file that SweepTemp removes.
package records
