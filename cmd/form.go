package cmd

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/formvault/internal/forms"
	"github.com/PolarWolf314/formvault/internal/ui"
	"github.com/PolarWolf314/formvault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	formSchemaPath string
	formName       string
	formPrivate    bool
	formForce      bool
)

// FormCmd groups form definition commands.
var FormCmd = &cobra.Command{
	Use:   "form",
	Short: "Create and manage forms",
	Long: `Creates, edits, lists and deletes forms.

Fields are read from a TOML schema file:

  name = "Contact"

  [[fields]]
  name = "fullName"
  label = "Full name"
  type = "text"
  required = true

  [[fields]]
  name = "topic"
  label = "Topic"
  type = "select"
  options = ["sales", "support"]

Supported types: ` + fieldTypeList() + `.`,
}

func init() {
	formCreateCmd.Flags().StringVarP(&formSchemaPath, "schema", "s", "", "schema file (required)")
	_ = formCreateCmd.MarkFlagRequired("schema")
	formCreateCmd.Flags().StringVar(&formName, "name", "", "form name (default: name from the schema)")

	formEditCmd.Flags().StringVarP(&formSchemaPath, "schema", "s", "", "schema file (required)")
	_ = formEditCmd.MarkFlagRequired("schema")
	formEditCmd.Flags().StringVar(&formName, "name", "", "new form name")

	formPrivacyCmd.Flags().BoolVar(&formPrivate, "private", true, "mark the form private (use --private=false to make it public)")
	formDeleteCmd.Flags().BoolVar(&formForce, "force", false, "confirm deleting the form and all submissions")

	FormCmd.AddCommand(formCreateCmd)
	FormCmd.AddCommand(formEditCmd)
	FormCmd.AddCommand(formListCmd)
	FormCmd.AddCommand(formShowCmd)
	FormCmd.AddCommand(formPrivacyCmd)
	FormCmd.AddCommand(formDeleteCmd)
}

func resetFormCommandState() {
	formSchemaPath = ""
	formName = ""
	formPrivate = true
	formForce = false
}

func fieldTypeList() string {
	names := make([]string, len(forms.FieldTypes))
	for i, t := range forms.FieldTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

var formCreateCmd = &cobra.Command{
	Use:     "create <username>",
	Short:   "Create a form from a schema file",
	Args:    cobra.ExactArgs(1),
	Example: `  formvault form create jane --schema contact.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting form create command")
		spinner, cleanup := startSpinner("Creating form...")
		defer cleanup()

		schema, err := forms.LoadSchema(formSchemaPath)
		if err != nil {
			return fail(spinner, err)
		}
		name := formName
		if name == "" {
			name = schema.Name
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		cfg, err := rt.CreateForm(ctx, workflows.CreateFormOptions{
			Username: args[0],
			Name:     name,
			Fields:   schema.Fields,
		})
		if err != nil {
			return fail(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Created form " + ui.Highlight.Sprint(cfg.Slug) +
			" with " + pluralize(len(cfg.Fields), "field") + "\n" +
			ui.Info.Sprint("→") + " API key: " + ui.Code.Sprint(cfg.APIKey)
		return nil
	},
}

var formEditCmd = &cobra.Command{
	Use:   "edit <username> <slug>",
	Short: "Replace a form's fields and migrate its submissions",
	Long: `Replaces the fields of a form with those in a schema file.

Existing submissions are rewritten to the new columns by field name:
renamed or new fields start empty, removed fields are dropped.`,
	Args:    cobra.ExactArgs(2),
	Example: `  formvault form edit jane contact --schema contact.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting form edit command")
		spinner, cleanup := startSpinner("Migrating submissions...")
		defer cleanup()

		schema, err := forms.LoadSchema(formSchemaPath)
		if err != nil {
			return fail(spinner, err)
		}
		name := formName
		if name == "" {
			name = schema.Name
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := rt.UpdateForm(ctx, workflows.UpdateFormOptions{
			Username: args[0],
			Slug:     args[1],
			Name:     name,
			Fields:   schema.Fields,
		})
		if err != nil {
			return fail(spinner, err)
		}

		msg := ui.Success.Sprint("✓") + " Updated " + ui.Highlight.Sprint(result.Form.Slug) + ", " +
			pluralize(result.Migration.Rows, "submission") + " migrated"
		if result.Migration.Preserved > 0 {
			msg += "\n" + ui.Warning.Sprint("⚠") + " " + pluralize(result.Migration.Preserved, "unreadable line") + " kept as-is"
		}
		spinner.FinalMSG = msg
		return nil
	},
}

var formListCmd = &cobra.Command{
	Use:   "list <username>",
	Short: "List a user's forms",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting form list command")
		spinner, cleanup := startSpinner("Loading forms...")
		defer cleanup()

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		list, err := rt.ListForms(ctx, args[0])
		if err != nil {
			return fail(spinner, err)
		}

		if len(list) == 0 {
			spinner.FinalMSG = ui.Info.Sprint("ℹ") + " No forms yet. Run " + ui.Code.Sprint("formvault form create "+args[0]+" --schema <file>")
			return nil
		}

		var b strings.Builder
		for _, cfg := range list {
			fmt.Fprintf(&b, "%s  %s  %s", ui.Highlight.Sprint(cfg.Slug), cfg.Name, ui.Muted.Sprint(pluralize(len(cfg.Fields), "field")))
			if cfg.Private {
				b.WriteString("  " + ui.Warning.Sprint("private"))
			}
			b.WriteString("\n")
		}
		spinner.FinalMSG = b.String()
		return nil
	},
}

var formShowCmd = &cobra.Command{
	Use:   "show <username> <slug>",
	Short: "Show a form's definition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting form show command")
		spinner, cleanup := startSpinner("Loading form...")
		defer cleanup()

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		cfg, err := rt.ShowForm(ctx, args[0], args[1])
		if err != nil {
			return fail(spinner, err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Form: %s %s\n", ui.Highlight.Sprint(cfg.Name), ui.Muted.Sprint(cfg.Slug))
		fmt.Fprintf(&b, "API key: %s\n", ui.Code.Sprint(cfg.APIKey))
		fmt.Fprintf(&b, "Private: %t\n", cfg.Private)
		fmt.Fprintf(&b, "Created: %s\n\n", cfg.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		for _, f := range cfg.Fields {
			fmt.Fprintf(&b, "  %-20s %-16s %s", f.Name, f.Type, f.Label)
			if f.Required {
				b.WriteString(" " + ui.Warning.Sprint("*"))
			}
			if len(f.Options) > 0 {
				b.WriteString(" " + ui.Muted.Sprint(strings.Join(f.Options, " | ")))
			}
			b.WriteString("\n")
		}
		spinner.FinalMSG = b.String()
		return nil
	},
}

var formPrivacyCmd = &cobra.Command{
	Use:   "privacy <username> <slug>",
	Short: "Mark a form private or public",
	Args:  cobra.ExactArgs(2),
	Example: `  formvault form privacy jane contact
  formvault form privacy jane contact --private=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting form privacy command")
		spinner, cleanup := startSpinner("Updating form...")
		defer cleanup()

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		cfg, err := rt.SetPrivacy(ctx, workflows.SetPrivacyOptions{Username: args[0], Slug: args[1], Private: formPrivate})
		if err != nil {
			return fail(spinner, err)
		}

		state := "public"
		if cfg.Private {
			state = "private"
		}
		spinner.FinalMSG = ui.Success.Sprint("✓") + " " + ui.Highlight.Sprint(cfg.Slug) + " is now " + state
		return nil
	},
}

var formDeleteCmd = &cobra.Command{
	Use:   "delete <username> <slug>",
	Short: "Delete a form with all submissions and uploads",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting form delete command")
		spinner, cleanup := startSpinner("Deleting form...")
		defer cleanup()

		if !formForce {
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " This deletes every submission of " + ui.Highlight.Sprint(args[1]) + "\n" +
				ui.Info.Sprint("→") + " Re-run with " + ui.Flag.Sprint("--force") + " to confirm"
			return nil
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		if err := rt.DeleteForm(ctx, workflows.DeleteFormOptions{Username: args[0], Slug: args[1]}); err != nil {
			return fail(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Deleted " + ui.Highlight.Sprint(args[1])
		return nil
	},
}
