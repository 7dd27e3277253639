package utils

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// ReadPassword prompts for a password on stderr without echoing input.
// Returns an error if stdin is not a terminal.
func ReadPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("cannot read password: stdin is not a terminal (hint: use --password-stdin)")
	}

	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}

// ReadNewPassword prompts for a new password twice and checks both match.
func ReadNewPassword(prompt string) (string, error) {
	first, err := ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	second, err := ReadPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passwords do not match")
	}
	return first, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
