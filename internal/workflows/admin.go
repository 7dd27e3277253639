package workflows

import (
	"context"
	"time"

	"github.com/PolarWolf314/formvault/internal/audit"
)

// SweepOptions configures the sweep workflow.
type SweepOptions struct {
	Actor    string
	Password string

	// MinAge overrides the configured minimum temp file age when positive.
	MinAge time.Duration
}

// SweepResult lists the removed temp files.
type SweepResult struct {
	Removed []string
}

// Sweep removes temp files orphaned by interrupted rewrites.
//
// Returns ErrPermissionDenied unless Actor is an admin.
func (rt *Runtime) Sweep(ctx context.Context, opts SweepOptions) (*SweepResult, error) {
	if err := rt.requireAdmin(ctx, opts.Actor, opts.Password); err != nil {
		return nil, err
	}

	minAge := opts.MinAge
	if minAge <= 0 {
		age, err := rt.Settings.SweepAge()
		if err != nil {
			return nil, err
		}
		minAge = age
	}

	removed, err := rt.Store.SweepTemp(rt.Settings.UsersDir(), minAge)
	if err != nil {
		return nil, err
	}

	entry := rt.auditAs(audit.OpSweep, opts.Actor)
	entry.RemovedCount = len(removed)
	rt.audit(entry)

	return &SweepResult{Removed: removed}, nil
}

// UserSummary describes one registered user.
type UserSummary struct {
	Username  string
	Email     string
	Forms     int
	Admin     bool
	CreatedAt time.Time
}

// ListUsersOptions configures the list-users workflow.
type ListUsersOptions struct {
	Actor    string
	Password string
}

// ListUsers returns every registered user with their form count.
//
// Returns ErrPermissionDenied unless Actor is an admin.
func (rt *Runtime) ListUsers(ctx context.Context, opts ListUsersOptions) ([]UserSummary, error) {
	if err := rt.requireAdmin(ctx, opts.Actor, opts.Password); err != nil {
		return nil, err
	}

	names, err := rt.Settings.ListUsernames()
	if err != nil {
		return nil, err
	}

	var users []UserSummary
	for _, name := range names {
		cfg, err := rt.Accounts.Load(name)
		if err != nil {
			rt.Log.Warnf("Skipping user %s: %v", name, err)
			continue
		}
		list, err := rt.Forms.List(name)
		if err != nil {
			return nil, err
		}
		users = append(users, UserSummary{
			Username:  name,
			Email:     cfg.User.Email,
			Forms:     len(list),
			Admin:     rt.Settings.IsAdmin(name),
			CreatedAt: cfg.User.CreatedAt,
		})
	}
	return users, nil
}

// AuditLogOptions configures the audit-log workflow.
type AuditLogOptions struct {
	Actor    string
	Password string

	// User and Form filter the entries when set.
	User string
	Form string
}

// AuditLog returns audit entries, optionally filtered.
//
// Returns ErrPermissionDenied unless Actor is an admin.
func (rt *Runtime) AuditLog(ctx context.Context, opts AuditLogOptions) ([]audit.Entry, error) {
	if err := rt.requireAdmin(ctx, opts.Actor, opts.Password); err != nil {
		return nil, err
	}

	entries, err := audit.ReadEntries(rt.Settings.AuditLogPath())
	if err != nil {
		return nil, err
	}
	return audit.Filter(entries, opts.User, opts.Form), nil
}
