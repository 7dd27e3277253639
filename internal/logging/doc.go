// Package logger provides leveled logging for formvault.
//
// The logger supports verbosity levels controlled by command-line flags.
// Output is formatted with colored prefixes from fatih/color.
//
// # Verbosity Levels
//
//   - --verbose: Shows info messages
//   - --debug: Shows all messages including debug details
//
// Warnings and errors are always shown.
//
// # Usage
//
//	log := logger.Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Rekeyed %d record files", count)
//
// Store and workflow options carry a Logger value explicitly; nothing in
// the store reaches for a package-level logger.
package logger
