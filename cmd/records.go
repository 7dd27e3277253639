package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/PolarWolf314/formvault/internal/forms"
	"github.com/PolarWolf314/formvault/internal/ui"
	"github.com/PolarWolf314/formvault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	recordFields     []string
	recordFiles      []string
	recordAPIKey     string
	recordExportMode string
	recordOutput     string
)

// RecordsCmd groups submission commands.
var RecordsCmd = &cobra.Command{
	Use:     "records",
	Aliases: []string{"rec"},
	Short:   "Submit, list, delete and export form submissions",
}

func init() {
	recordsSubmitCmd.Flags().StringArrayVarP(&recordFields, "field", "f", nil, "field value as name=value (repeat for multiple values)")
	recordsSubmitCmd.Flags().StringArrayVar(&recordFiles, "file", nil, "file field as name=path")
	recordsSubmitCmd.Flags().StringVar(&recordAPIKey, "api-key", "", "submit by form API key instead of <username> <slug>")

	recordsExportCmd.Flags().StringVarP(&recordExportMode, "mode", "m", string(forms.ExportDecrypted), "export mode: decrypted or raw")
	recordsExportCmd.Flags().StringVarP(&recordOutput, "output", "o", "", "output file (default: stdout)")

	RecordsCmd.AddCommand(recordsSubmitCmd)
	RecordsCmd.AddCommand(recordsListCmd)
	RecordsCmd.AddCommand(recordsDeleteCmd)
	RecordsCmd.AddCommand(recordsExportCmd)
}

func resetRecordsCommandState() {
	recordFields = nil
	recordFiles = nil
	recordAPIKey = ""
	recordExportMode = string(forms.ExportDecrypted)
	recordOutput = ""
}

var recordsSubmitCmd = &cobra.Command{
	Use:   "submit [<username> <slug>]",
	Short: "Record a submission",
	Args: func(cmd *cobra.Command, args []string) error {
		if recordAPIKey != "" {
			return cobra.RangeArgs(0, 2)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	Example: `  formvault records submit jane contact -f fullName="Jane Doe" -f topic=sales -f topic=support
  formvault records submit --api-key 1f2e3d... -f fullName="Jane Doe" --file cv=./cv.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting records submit command")
		spinner, cleanup := startSpinner("Recording submission...")
		defer cleanup()

		values, err := forms.ParseAssignments(recordFields)
		if err != nil {
			return Logger.ErrorfAndReturn("%v", err)
		}
		fileArgs, err := forms.ParseAssignments(recordFiles)
		if err != nil {
			return Logger.ErrorfAndReturn("%v", err)
		}
		files := make(map[string]string, len(fileArgs))
		for name, paths := range fileArgs {
			files[name] = paths[len(paths)-1]
		}

		opts := workflows.SubmitOptions{APIKey: recordAPIKey, Values: values, Files: files}
		if len(args) == 2 {
			opts.Username, opts.Slug = args[0], args[1]
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := rt.Submit(ctx, opts)
		if err != nil {
			return fail(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Submission recorded for " +
			ui.Highlight.Sprint(result.Username+"/"+result.Slug)
		return nil
	},
}

var recordsListCmd = &cobra.Command{
	Use:   "list <username> <slug>",
	Short: "List decrypted submissions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting records list command")
		spinner, cleanup := startSpinner("Decrypting submissions...")
		defer cleanup()

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		table, err := rt.ListSubmissions(ctx, workflows.ListSubmissionsOptions{Username: args[0], Slug: args[1]})
		if err != nil {
			return fail(spinner, err)
		}

		if len(table.Rows) == 0 && len(table.Issues) == 0 {
			spinner.FinalMSG = ui.Info.Sprint("ℹ") + " No submissions yet"
			return nil
		}

		indexes := make([]int, len(table.Rows))
		for i, r := range table.Rows {
			indexes[i] = r.Index
		}

		var buf bytes.Buffer
		if err := ui.Table(&buf, table.Header, indexes, table.Records()); err != nil {
			return err
		}
		if n := len(table.Issues); n > 0 {
			fmt.Fprintf(&buf, "%s skipped %s that could not be decrypted\n",
				ui.Warning.Sprint("⚠"), pluralize(n, "line"))
		}
		spinner.FinalMSG = buf.String()
		return nil
	},
}

var recordsDeleteCmd = &cobra.Command{
	Use:     "delete <username> <slug> <row>",
	Short:   "Delete a submission by its row number",
	Args:    cobra.ExactArgs(3),
	Example: `  formvault records delete jane contact 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting records delete command")
		spinner, cleanup := startSpinner("Deleting submission...")
		defer cleanup()

		index, err := strconv.Atoi(args[2])
		if err != nil {
			return Logger.ErrorfAndReturn("invalid row number %q", args[2])
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		err = rt.DeleteSubmission(ctx, workflows.DeleteSubmissionOptions{Username: args[0], Slug: args[1], Index: index})
		if err != nil {
			return fail(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Deleted row " + strconv.Itoa(index) + " of " + ui.Highlight.Sprint(args[1])
		return nil
	},
}

var recordsExportCmd = &cobra.Command{
	Use:   "export <username> <slug>",
	Short: "Export submissions as CSV",
	Long: `Exports a form's submissions as CSV.

The decrypted mode writes plain rows. The raw mode writes a plain header
followed by the data lines still encrypted, for backups.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting records export command")

		mode, err := forms.ParseExportMode(recordExportMode)
		if err != nil {
			return Logger.ErrorfAndReturn("%v", err)
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		opts := workflows.ExportOptions{Username: args[0], Slug: args[1], Mode: mode, Out: cmd.OutOrStdout()}

		if recordOutput == "" {
			// Stdout carries the CSV, so no spinner.
			if _, err := rt.Export(ctx, opts); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatError(err))
				if isUnexpectedError(err) {
					return err
				}
			}
			return nil
		}

		spinner, cleanup := startSpinner("Exporting submissions...")
		defer cleanup()

		path, err := filepath.Abs(recordOutput)
		if err != nil {
			return Logger.ErrorfAndReturn("invalid output path: %v", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to create %s: %v", path, err)
		}
		defer f.Close()

		opts.Out = f
		opts.OutputPath = path
		result, err := rt.Export(ctx, opts)
		if err != nil {
			return fail(spinner, err)
		}
		if err := f.Close(); err != nil {
			return Logger.ErrorfAndReturn("failed to write %s: %v", path, err)
		}

		msg := ui.Success.Sprint("✓") + " Exported " + pluralize(result.Rows, "submission") + " to " + ui.Path.Sprint(path)
		if result.Skipped > 0 {
			msg += "\n" + ui.Warning.Sprint("⚠") + " " + pluralize(result.Skipped, "unreadable line") + " left out"
		}
		spinner.FinalMSG = msg
		return nil
	},
}
