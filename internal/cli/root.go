// Package cli is the timetrax command line. Without a subcommand it opens
// the terminal dashboard.
package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/timetrax/internal/store"
	"github.com/sadopc/timetrax/internal/tui"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	Format     string // "json" | "text"
	Debug      bool

	// storeOpts are appended to the options every command opens the store
	// with. Tests use it to pin the clock.
	storeOpts []store.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the timetrax CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timetrax",
		Short: "timetrax - track working time against a daily quota",
		Long: `Track what you work on and keep a running balance of worked versus
expected time. Weekends and public holidays expect no work.

Run without a subcommand to open the terminal dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(opts, cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/timetrax/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "debug logging")

	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newStartCommand(opts))
	cmd.AddCommand(newStopCommand(opts))
	cmd.AddCommand(newItemsCommand(opts))
	cmd.AddCommand(newLedgerCommand(opts))
	cmd.AddCommand(newDiffCommand(opts))
	cmd.AddCommand(newExpectedCommand(opts))
	cmd.AddCommand(newSettingsCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))

	return cmd
}

// runDashboard runs the bubbletea app. Logs go to a file next to the
// database so they don't tear the alternate screen.
func runDashboard(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	f, err := openLogFile(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open log file", err)
	}
	e, err := openEnv(opts, cfg, f)
	if err != nil {
		f.Close()
		return err
	}
	e.logFile = f
	defer e.Close()

	p := tea.NewProgram(tui.NewApp(e.store, e.engine), tea.WithAltScreen(), tea.WithOutput(cmd.OutOrStdout()))
	if _, err := p.Run(); err != nil {
		return WrapExitError(ExitFailure, "dashboard", err)
	}
	return nil
}

// Execute runs the root command against os.Args and returns the process
// exit code. Errors already reported through an OutputFormatter are not
// printed again.
func Execute() int {
	err := NewRootCommand().Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || !exitErr.reported {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return GetExitCode(err)
}
