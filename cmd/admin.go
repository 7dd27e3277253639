package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PolarWolf314/formvault/internal/audit"
	"github.com/PolarWolf314/formvault/internal/ui"
	"github.com/PolarWolf314/formvault/internal/utils"
	"github.com/PolarWolf314/formvault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	adminActor         string
	adminPasswordStdin bool
	adminMinAge        time.Duration
	adminAuditUser     string
	adminAuditForm     string
	adminAuditJSON     bool
)

// AdminCmd groups maintenance commands limited to admin users.
var AdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Maintenance commands for admin users",
	Long: `Maintenance commands for admin users.

Admins are listed in the admin_users setting or the FORMVAULT_ADMIN_USERS
environment variable. Every command authenticates the admin given by --as.`,
}

func init() {
	AdminCmd.PersistentFlags().StringVar(&adminActor, "as", "", "admin username (required)")
	_ = AdminCmd.MarkPersistentFlagRequired("as")
	AdminCmd.PersistentFlags().BoolVar(&adminPasswordStdin, "password-stdin", false, "read the password from stdin")

	adminSweepCmd.Flags().DurationVar(&adminMinAge, "min-age", 0, "only remove temp files older than this (default: sweep_min_age setting)")

	adminAuditCmd.Flags().StringVarP(&adminAuditUser, "user", "u", "", "only show entries for this user")
	adminAuditCmd.Flags().StringVarP(&adminAuditForm, "form", "f", "", "only show entries for this form slug")
	adminAuditCmd.Flags().BoolVar(&adminAuditJSON, "json", false, "print entries as JSON lines")

	AdminCmd.AddCommand(adminUsersCmd)
	AdminCmd.AddCommand(adminSweepCmd)
	AdminCmd.AddCommand(adminAuditCmd)
}

func resetAdminCommandState() {
	adminActor = ""
	adminPasswordStdin = false
	adminMinAge = 0
	adminAuditUser = ""
	adminAuditForm = ""
	adminAuditJSON = false
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting admin users command")
		spinner, cleanup := startSpinner("Loading users...")
		defer cleanup()

		passwords, err := readPasswords(adminPasswordStdin, spinner, passwordPrompt)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read password: %v", err)
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		users, err := rt.ListUsers(ctx, workflows.ListUsersOptions{Actor: adminActor, Password: passwords[0]})
		if err != nil {
			return fail(spinner, err)
		}

		if len(users) == 0 {
			spinner.FinalMSG = ui.Info.Sprint("ℹ") + " No users registered"
			return nil
		}

		rows := make([][]string, len(users))
		for i, u := range users {
			role := "user"
			if u.Admin {
				role = "admin"
			}
			created := ""
			if !u.CreatedAt.IsZero() {
				created = u.CreatedAt.Format(time.DateOnly)
			}
			rows[i] = []string{u.Username, u.Email, strconv.Itoa(u.Forms), role, created}
		}

		var buf bytes.Buffer
		if err := ui.Table(&buf, []string{"username", "email", "forms", "role", "created"}, nil, rows); err != nil {
			return err
		}
		spinner.FinalMSG = buf.String()
		return nil
	},
}

var adminSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove temp files left behind by interrupted writes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting admin sweep command")
		spinner, cleanup := startSpinner("Sweeping temp files...")
		defer cleanup()

		passwords, err := readPasswords(adminPasswordStdin, spinner, passwordPrompt)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read password: %v", err)
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := rt.Sweep(ctx, workflows.SweepOptions{Actor: adminActor, Password: passwords[0], MinAge: adminMinAge})
		if err != nil {
			return fail(spinner, err)
		}

		if len(result.Removed) == 0 {
			spinner.FinalMSG = ui.Success.Sprint("✓") + " No orphaned temp files found"
			return nil
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Removed " + pluralize(len(result.Removed), "temp file") + ":" +
			utils.FormatPaths(result.Removed)
		return nil
	},
}

var adminAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the audit log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting admin audit command")
		spinner, cleanup := startSpinner("Reading audit log...")
		defer cleanup()

		passwords, err := readPasswords(adminPasswordStdin, spinner, passwordPrompt)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read password: %v", err)
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		entries, err := rt.AuditLog(ctx, workflows.AuditLogOptions{
			Actor:    adminActor,
			Password: passwords[0],
			User:     adminAuditUser,
			Form:     adminAuditForm,
		})
		if err != nil {
			return fail(spinner, err)
		}

		if len(entries) == 0 {
			spinner.FinalMSG = ui.Info.Sprint("ℹ") + " No audit entries"
			return nil
		}

		var buf bytes.Buffer
		if adminAuditJSON {
			enc := json.NewEncoder(&buf)
			for _, e := range entries {
				if err := enc.Encode(e); err != nil {
					return err
				}
			}
		} else {
			for _, e := range entries {
				fmt.Fprintln(&buf, formatAuditEntry(e))
			}
		}
		spinner.FinalMSG = buf.String()
		return nil
	},
}

// formatAuditEntry renders one entry on a single line.
func formatAuditEntry(e audit.Entry) string {
	var b strings.Builder
	b.WriteString(ui.Muted.Sprint(e.Timestamp))
	b.WriteString(" ")
	b.WriteString(ui.Highlight.Sprint(e.User))
	b.WriteString(" ")
	b.WriteString(e.Operation)

	if e.Form != "" {
		b.WriteString(" form=" + e.Form)
	}
	if e.Row > 0 {
		b.WriteString(" row=" + strconv.Itoa(e.Row))
	}
	if e.Columns > 0 {
		b.WriteString(" columns=" + strconv.Itoa(e.Columns))
	}
	if e.Private != nil {
		b.WriteString(" private=" + strconv.FormatBool(*e.Private))
	}
	if e.FilesCount > 0 || e.FailedCount > 0 {
		b.WriteString(fmt.Sprintf(" files=%d failed=%d", e.FilesCount, e.FailedCount))
	}
	if e.Operation == audit.OpSweep {
		b.WriteString(" removed=" + strconv.Itoa(e.RemovedCount))
	}
	if e.Mode != "" {
		b.WriteString(" mode=" + e.Mode)
	}
	if e.OutputPath != "" {
		b.WriteString(" output=" + e.OutputPath)
	}
	return b.String()
}
