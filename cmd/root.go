package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/PolarWolf314/formvault/internal/configs"
	logger "github.com/PolarWolf314/formvault/internal/logging"
	"github.com/PolarWolf314/formvault/internal/workflows"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose    bool
	debug      bool
	dataDir    string
	configPath string
	Logger     logger.Logger
)

// Setup attaches the global flags and every formvault command to root.
func Setup(root *cobra.Command) {
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (overrides config and FORMVAULT_DATA_DIR)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default: $XDG_CONFIG_HOME/formvault/config.toml)")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{
			Verbose: verbose,
			Debug:   debug,
		}
		Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
	}

	root.AddCommand(UserCmd)
	root.AddCommand(FormCmd)
	root.AddCommand(RecordsCmd)
	root.AddCommand(AdminCmd)
}

// loadSettings resolves settings from the settings file, the environment
// and the --data-dir flag.
func loadSettings() (*configs.Settings, error) {
	path := configPath
	if path == "" {
		p, err := configs.DefaultSettingsPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	Logger.Debugf("Loading settings from %s", path)

	settings, err := configs.LoadSettings(path)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		settings.DataDir = dataDir
	}
	Logger.Debugf("Data directory: %s", settings.DataDir)
	return settings, nil
}

// newRuntime builds the workflow runtime for one command invocation.
func newRuntime() (*workflows.Runtime, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return workflows.NewRuntime(workflows.RuntimeOptions{
		Settings: settings,
		Logger:   Logger,
	}), nil
}

// commandContext returns a context cancelled on interrupt.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	dataDir = ""
	configPath = ""
	resetUserCommandState()
	resetFormCommandState()
	resetRecordsCommandState()
	resetAdminCommandState()

	for _, c := range []*cobra.Command{UserCmd, FormCmd, RecordsCmd, AdminCmd} {
		resetFlagState(c)
	}
}

// resetFlagState clears the Changed mark on every flag of c and its
// subcommands so required-flag checks start fresh between test runs.
func resetFlagState(c *cobra.Command) {
	unmark := func(flag *pflag.Flag) { flag.Changed = false }
	c.Flags().VisitAll(unmark)
	c.PersistentFlags().VisitAll(unmark)
	for _, sub := range c.Commands() {
		resetFlagState(sub)
	}
}
