package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetrax/internal/export"
	"github.com/sadopc/timetrax/internal/logging"
)

// ExportResult reports where the ledger was written.
type ExportResult struct {
	Format string `json:"format"`
	Path   string `json:"path"`
	Days   int    `json:"days"`
}

func (r ExportResult) String() string {
	return fmt.Sprintf("Exported %d days to %s", r.Days, r.Path)
}

func newExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "export <csv|json> <path>",
		Short:     "Write the ledger to a CSV or JSON file",
		Long:      `Write every closed day to path. A path of "-" writes to standard output.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"csv", "json"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, cmd, args[0], args[1])
		},
	}
}

func runExport(opts *RootOptions, cmd *cobra.Command, format, path string) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if format != "csv" && format != "json" {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgument, "export",
			fmt.Errorf("unknown export format %q: must be csv or json", format), nil)
	}

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	days, err := e.engine.WorkTimeByDay()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "export", err, nil)
	}

	if path == "-" {
		if format == "csv" {
			err = export.WriteCSV(cmd.OutOrStdout(), days)
		} else {
			err = export.WriteJSON(cmd.OutOrStdout(), days, e.store.Now())
		}
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "export", err, nil)
		}
		return nil
	}

	if format == "csv" {
		err = export.ToCSV(days, path)
	} else {
		err = export.ToJSON(days, path, e.store.Now())
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "export", err, nil)
	}
	e.logger.Debug("exported ledger", logging.KeyPath, path, logging.KeyCount, len(days))
	return f.Success(ExportResult{Format: format, Path: path, Days: len(days)})
}
