package workflows

import (
	"context"
	"time"

	"github.com/PolarWolf314/formvault/internal/audit"
	"github.com/PolarWolf314/formvault/internal/records"
)

// RegisterOptions configures the register workflow.
type RegisterOptions struct {
	Username string
	Password string
	Email    string
}

// RegisterResult contains the outcome of a registration.
type RegisterResult struct {
	Username string
	UserUUID string
}

// Register creates a new user.
//
// Returns ErrUserExists, ErrEmailTaken, ErrInvalidUsername or ErrInvalidEmail
// when the input is rejected.
func (rt *Runtime) Register(ctx context.Context, opts RegisterOptions) (*RegisterResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, err := rt.Accounts.Register(opts.Username, opts.Password, opts.Email)
	if err != nil {
		return nil, err
	}

	entry := audit.NewEntry(audit.OpRegister, cfg.User.Username)
	entry.UserUUID = cfg.User.UUID
	rt.audit(entry)

	return &RegisterResult{Username: cfg.User.Username, UserUUID: cfg.User.UUID}, nil
}

// PasswordResult summarizes a credential change.
type PasswordResult struct {
	// FilesRekeyed is the number of record files moved to the new key.
	FilesRekeyed int

	// FilesSkipped is the number of plaintext record files left as they were.
	FilesSkipped int

	// LinesPreserved counts lines that decrypted under neither key and were kept verbatim.
	LinesPreserved int
}

func passwordResult(report *records.RekeyReport) *PasswordResult {
	result := &PasswordResult{}
	for _, f := range report.Files {
		if f.Skipped {
			result.FilesSkipped++
			continue
		}
		result.FilesRekeyed++
		result.LinesPreserved += f.Preserved
	}
	return result
}

// ChangePasswordOptions configures the change-password workflow.
type ChangePasswordOptions struct {
	Username        string
	CurrentPassword string
	NewPassword     string
}

// ChangePassword re-encrypts every record file of the user and stores the
// new credential. On any failure the previous credential and keys remain.
//
// Returns ErrInvalidCredentials if the current password is wrong.
func (rt *Runtime) ChangePassword(ctx context.Context, opts ChangePasswordOptions) (*PasswordResult, error) {
	report, err := rt.Accounts.ChangePassword(ctx, opts.Username, opts.CurrentPassword, opts.NewPassword)
	rt.auditRekey(audit.OpPasswordChange, opts.Username, report, err)
	if err != nil {
		return nil, err
	}
	return passwordResult(report), nil
}

// RequestResetOptions configures the reset-token workflow.
type RequestResetOptions struct {
	Username string
}

// ResetTokenResult holds a newly issued reset token.
type ResetTokenResult struct {
	Token     string
	ExpiresAt time.Time
}

// RequestReset issues a password reset token.
// Delivering the token to the user is left to the caller.
func (rt *Runtime) RequestReset(ctx context.Context, opts RequestResetOptions) (*ResetTokenResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	token, expires, err := rt.Accounts.GenerateResetToken(opts.Username)
	if err != nil {
		return nil, err
	}
	return &ResetTokenResult{Token: token, ExpiresAt: expires}, nil
}

// ResetPasswordOptions configures the reset-password workflow.
type ResetPasswordOptions struct {
	Username    string
	Token       string
	NewPassword string
}

// ResetPassword sets a new password with a reset token.
//
// Returns ErrInvalidResetToken if the token is wrong or expired.
func (rt *Runtime) ResetPassword(ctx context.Context, opts ResetPasswordOptions) (*PasswordResult, error) {
	report, err := rt.Accounts.ResetPassword(ctx, opts.Username, opts.Token, opts.NewPassword)
	rt.auditRekey(audit.OpPasswordReset, opts.Username, report, err)
	if err != nil {
		return nil, err
	}
	return passwordResult(report), nil
}

// auditRekey records a credential change once a cascade actually ran.
func (rt *Runtime) auditRekey(op, username string, report *records.RekeyReport, err error) {
	if report == nil {
		return
	}

	if err == nil {
		rt.audit(rt.auditAs(op, username))
	}

	entry := rt.auditAs(audit.OpRekey, username)
	entry.FilesCount = len(report.Rekeyed())
	entry.FailedCount = len(report.Failed)
	rt.audit(entry)
}
