package cmd

import (
	"github.com/PolarWolf314/formvault/internal/ui"
	"github.com/PolarWolf314/formvault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	userEmail         string
	userPasswordStdin bool
	userResetToken    string
)

// UserCmd groups account commands.
var UserCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users and their credentials",
	Long: `Registers users and changes their passwords.

A user's records are encrypted with a key derived from their credential,
so changing or resetting a password re-encrypts every record file the
user owns before the new password takes effect.`,
}

func init() {
	userRegisterCmd.Flags().StringVar(&userEmail, "email", "", "email address (required)")
	_ = userRegisterCmd.MarkFlagRequired("email")
	userResetCmd.Flags().StringVar(&userResetToken, "token", "", "reset token (required)")
	_ = userResetCmd.MarkFlagRequired("token")

	for _, c := range []*cobra.Command{userRegisterCmd, userPasswdCmd, userResetCmd} {
		c.Flags().BoolVar(&userPasswordStdin, "password-stdin", false, "read passwords from stdin, one per line")
	}

	UserCmd.AddCommand(userRegisterCmd)
	UserCmd.AddCommand(userPasswdCmd)
	UserCmd.AddCommand(userResetTokenCmd)
	UserCmd.AddCommand(userResetCmd)
}

func resetUserCommandState() {
	userEmail = ""
	userPasswordStdin = false
	userResetToken = ""
}

var userRegisterCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Register a new user",
	Args:  cobra.ExactArgs(1),
	Example: `  formvault user register jane --email jane@example.com
  printf 'secret\n' | formvault user register jane --email jane@example.com --password-stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting user register command")
		spinner, cleanup := startSpinner("Registering user...")
		defer cleanup()

		passwords, err := readPasswords(userPasswordStdin, spinner, newPasswordPrompt)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read password: %v", err)
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := rt.Register(ctx, workflows.RegisterOptions{
			Username: args[0],
			Password: passwords[0],
			Email:    userEmail,
		})
		if err != nil {
			return fail(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Registered " + ui.Highlight.Sprint(result.Username) +
			" " + ui.Muted.Sprint(result.UserUUID)
		return nil
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Change a user's password and re-encrypt their records",
	Args:  cobra.ExactArgs(1),
	Example: `  formvault user passwd jane
  printf 'old\nnew\n' | formvault user passwd jane --password-stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting user passwd command")
		spinner, cleanup := startSpinner("Re-encrypting records...")
		defer cleanup()

		passwords, err := readPasswords(userPasswordStdin, spinner, currentPasswordPrompt, newPasswordPrompt)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read passwords: %v", err)
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := rt.ChangePassword(ctx, workflows.ChangePasswordOptions{
			Username:        args[0],
			CurrentPassword: passwords[0],
			NewPassword:     passwords[1],
		})
		if err != nil {
			return fail(spinner, err)
		}

		spinner.FinalMSG = passwordChangedMessage(args[0], result)
		return nil
	},
}

var userResetTokenCmd = &cobra.Command{
	Use:   "reset-token <username>",
	Short: "Issue a password reset token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting user reset-token command")
		spinner, cleanup := startSpinner("Issuing reset token...")
		defer cleanup()

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := rt.RequestReset(ctx, workflows.RequestResetOptions{Username: args[0]})
		if err != nil {
			return fail(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Reset token for " + ui.Highlight.Sprint(args[0]) + ": " +
			ui.Code.Sprint(result.Token) + "\n" +
			ui.Info.Sprint("→") + " Valid until " + result.ExpiresAt.Local().Format("2006-01-02 15:04:05")
		return nil
	},
}

var userResetCmd = &cobra.Command{
	Use:   "reset <username>",
	Short: "Set a new password with a reset token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting user reset command")
		spinner, cleanup := startSpinner("Re-encrypting records...")
		defer cleanup()

		passwords, err := readPasswords(userPasswordStdin, spinner, newPasswordPrompt)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read password: %v", err)
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := rt.ResetPassword(ctx, workflows.ResetPasswordOptions{
			Username:    args[0],
			Token:       userResetToken,
			NewPassword: passwords[0],
		})
		if err != nil {
			return fail(spinner, err)
		}

		spinner.FinalMSG = passwordChangedMessage(args[0], result)
		return nil
	},
}

func passwordChangedMessage(username string, result *workflows.PasswordResult) string {
	msg := ui.Success.Sprint("✓") + " Password changed for " + ui.Highlight.Sprint(username) +
		", " + pluralize(result.FilesRekeyed, "record file") + " re-encrypted"
	if result.FilesSkipped > 0 {
		msg += "\n" + ui.Info.Sprint("→") + " " + pluralize(result.FilesSkipped, "plaintext record file") + " left unchanged"
	}
	if result.LinesPreserved > 0 {
		msg += "\n" + ui.Warning.Sprint("⚠") + " " + pluralize(result.LinesPreserved, "unreadable line") + " kept as-is"
	}
	return msg
}
