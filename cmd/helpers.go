package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/formvault/internal/errors"
	"github.com/PolarWolf314/formvault/internal/ui"
	"github.com/PolarWolf314/formvault/internal/utils"

	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message.
// Returns the spinner and a cleanup function that should be deferred.
// The cleanup prints spinner.FinalMSG, adding a trailing newline if missing.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// formatError turns a workflow error into a final message for the user.
func formatError(err error) string {
	cross := ui.Error.Sprint("✗") + " "
	hint := "\n" + ui.Info.Sprint("→") + " "

	switch {
	case errors.Is(err, kerrors.ErrUserNotFound):
		return cross + "User not found" + hint + "Run " + ui.Code.Sprint("formvault user register") + " first"
	case errors.Is(err, kerrors.ErrUserExists):
		return cross + "That username is already registered"
	case errors.Is(err, kerrors.ErrEmailTaken):
		return cross + "That email is already registered"
	case errors.Is(err, kerrors.ErrInvalidUsername):
		return cross + "Usernames may only contain letters, digits, _ and -"
	case errors.Is(err, kerrors.ErrInvalidEmail):
		return cross + "Invalid email format"
	case errors.Is(err, kerrors.ErrInvalidCredentials):
		return cross + "Invalid username or password"
	case errors.Is(err, kerrors.ErrInvalidResetToken):
		return cross + "Invalid or expired reset token" + hint + "Run " + ui.Code.Sprint("formvault user reset-token") + " for a new one"
	case errors.Is(err, kerrors.ErrPermissionDenied):
		return cross + "This command is limited to admin users"
	case errors.Is(err, kerrors.ErrFormNotFound):
		return cross + "Form not found" + hint + "Run " + ui.Code.Sprint("formvault form list") + " to see available forms"
	case errors.Is(err, kerrors.ErrAPIKeyMismatch):
		return cross + "The API key belongs to a different form"
	case errors.Is(err, kerrors.ErrNoValidFields):
		return cross + "The schema has no valid fields" + hint + "Every field needs a name and a label"
	case errors.Is(err, kerrors.ErrMissingRequiredField):
		return cross + err.Error()
	case errors.Is(err, kerrors.ErrInvalidFormConfig):
		return cross + err.Error()
	case errors.Is(err, kerrors.ErrInvalidRowIndex):
		return cross + "Row numbers start at 1"
	case errors.Is(err, kerrors.ErrRecordFileNotFound):
		return cross + "This form has no submissions yet"
	case errors.Is(err, kerrors.ErrDecryptFailed):
		return cross + "Records could not be decrypted with the current credentials\n\n" + ui.Error.Sprint("Error: ") + err.Error()
	default:
		return cross + "Command failed\n\n" + ui.Error.Sprint("Error: ") + err.Error()
	}
}

// isUnexpectedError returns true if the error should cause a non-zero exit
// beyond the message already shown.
func isUnexpectedError(err error) bool {
	for _, known := range []error{
		kerrors.ErrUserNotFound, kerrors.ErrUserExists, kerrors.ErrEmailTaken,
		kerrors.ErrInvalidUsername, kerrors.ErrInvalidEmail, kerrors.ErrInvalidCredentials,
		kerrors.ErrInvalidResetToken, kerrors.ErrPermissionDenied, kerrors.ErrFormNotFound,
		kerrors.ErrAPIKeyMismatch, kerrors.ErrNoValidFields, kerrors.ErrMissingRequiredField,
		kerrors.ErrInvalidFormConfig, kerrors.ErrInvalidRowIndex, kerrors.ErrRecordFileNotFound,
	} {
		if errors.Is(err, known) {
			return false
		}
	}
	return true
}

// fail sets the spinner's final message for err and returns the error
// cobra should see.
func fail(s *spinner.Spinner, err error) error {
	s.FinalMSG = formatError(err)
	if isUnexpectedError(err) {
		return err
	}
	return nil
}

// readPasswords returns n passwords from stdin when fromStdin is set, or
// prompts for each of them.
func readPasswords(fromStdin bool, s *spinner.Spinner, prompts ...string) ([]string, error) {
	if fromStdin {
		return utils.ReadStdinLines(len(prompts))
	}
	if !utils.IsTerminal() {
		return nil, fmt.Errorf("stdin is not a terminal, pass %s to pipe passwords in", ui.Flag.Sprint("--password-stdin"))
	}

	s.Stop()
	defer func() {
		if !verbose && !debug {
			s.Restart()
		}
	}()

	out := make([]string, 0, len(prompts))
	for _, p := range prompts {
		var (
			pw  string
			err error
		)
		if p == newPasswordPrompt {
			pw, err = utils.ReadNewPassword(p)
		} else {
			pw, err = utils.ReadPassword(p)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, pw)
	}
	return out, nil
}

const (
	passwordPrompt        = "Password: "
	currentPasswordPrompt = "Current password: "
	newPasswordPrompt     = "New password: "
)

// pluralize returns "1 file" or "n files".
func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
