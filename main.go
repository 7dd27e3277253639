package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/formvault/cmd"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "formvault",
	Short: "formvault - encrypted form submissions without a database.",
	Long: `formvault stores form submissions in per-form CSV files, one encrypted
line per submission, keyed to the owning user's credentials.

Usage:
  formvault <command> [flags]

Available Commands:
  user       Register users and change their passwords
  form       Create and edit form schemas
  records    Submit, list, delete and export submissions
  admin      Maintenance commands for admin users

Run 'formvault help <command>' for more details on a specific command.
`,
	SilenceUsage: true,
}

func main() {
	cmd.Setup(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
