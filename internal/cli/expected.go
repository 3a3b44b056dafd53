package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetrax/internal/export"
)

// ExpectedResult is the quota for one date.
type ExpectedResult struct {
	Date    string `json:"date"`
	Seconds int64  `json:"seconds"`
	// Stored is false when no row exists yet and Seconds is what the
	// default policy would record.
	Stored  bool   `json:"stored"`
	Holiday string `json:"holiday,omitempty"`
}

func (r ExpectedResult) String() string {
	s := fmt.Sprintf("%s: %s", r.Date, export.FormatDuration(time.Duration(r.Seconds)*time.Second))
	if !r.Stored {
		s += " (default)"
	}
	if r.Holiday != "" {
		s += " " + r.Holiday
	}
	return s
}

func newExpectedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expected",
		Short: "Read or override the expected time for a date",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [date]",
		Short: "Show the expected time for a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := ""
			if len(args) == 1 {
				date = args[0]
			}
			return runExpectedGet(rootOpts, cmd, date)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <date> <duration>",
		Short: "Override the expected time for a date",
		Long: `Override the expected time for a date. The duration is a Go duration
such as 7h30m or a number of hours such as 7.5. Dates accept YYYY-MM-DD
or phrases like "yesterday" and "last friday".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpectedSet(rootOpts, cmd, args[0], args[1])
		},
	})

	return cmd
}

func runExpectedGet(opts *RootOptions, cmd *cobra.Command, input string) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	date, err := parseDate(input, e.store.Now().In(e.store.Location()))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgument, "expected time", err, nil)
	}

	d, stored, err := e.store.ExpectedTime(date)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "expected time", err, nil)
	}
	if !stored {
		if d, err = e.engine.DefaultQuota(date); err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "expected time", err, nil)
		}
	}

	res := ExpectedResult{Date: date.String(), Seconds: int64(d / time.Second), Stored: stored}
	if name, ok := e.holidays.Name(date, e.engine.Region()); ok {
		res.Holiday = name
	}
	return f.Success(res)
}

func runExpectedSet(opts *RootOptions, cmd *cobra.Command, dateArg, durArg string) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	d, err := parseDuration(durArg)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgument, "set expected time", err, nil)
	}
	if d < 0 {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgument, "set expected time",
			fmt.Errorf("negative duration %s", d), nil)
	}

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	date, err := parseDate(dateArg, e.store.Now().In(e.store.Location()))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgument, "set expected time", err, nil)
	}
	if err := e.store.SetExpectedTime(date, d); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "set expected time", err, nil)
	}
	return f.Success(ExpectedResult{Date: date.String(), Seconds: int64(d / time.Second), Stored: true})
}
