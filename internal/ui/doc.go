// Package ui provides semantic text formatting for CLI output.
//
// Formatters render content by meaning rather than by color. With a color
// capable terminal content is colorized; when NO_COLOR is set or colors are
// unavailable, text decorations are used instead.
//
//	ui.Code.Sprint("formvault form list jane")  // Commands
//	ui.Path.Sprint("users/jane/forms")          // File paths
//	ui.Success.Sprint("✓")                       // Success indicators
//	ui.Error.Sprint("✗")                         // Error indicators
//	ui.Highlight.Sprint("contact-us")           // Usernames, slugs, emails
//	ui.Muted.Sprint("private")                  // Secondary text
//
// Table renders decoded record rows as aligned columns.
package ui
