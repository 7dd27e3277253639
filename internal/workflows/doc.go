// Package workflows provides high-level orchestration for formvault commands.
//
// Workflows coordinate the accounts, forms, records and audit packages to
// implement complete user-facing features. Each workflow handles a single
// command's business logic, independent of CLI concerns like flag parsing,
// spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow method on a Runtime
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Resolving the form and the owner's record key
//   - Validating input and permissions
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package:
//
//	result, err := rt.DeleteSubmission(ctx, opts)
//	if errors.Is(err, kerrors.ErrRecordFileNotFound) {
//	    // Tell the user the form has no submissions yet
//	}
//
// # Context Usage
//
// All workflow methods accept a context.Context as their first parameter.
// Long-running work (the re-keying cascade) checks it between files.
package workflows
