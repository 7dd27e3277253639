// Package utils provides shared helpers for the formvault CLI.
//
// # I/O Utilities
//
//   - ReadStdinLines: reads passwords from piped stdin
//
// # Terminal Utilities
//
//   - ReadPassword: prompts for a password without echoing input
//   - IsTerminal: checks if stdin is a terminal
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
package utils
