package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetrax/internal/accounting"
	"github.com/sadopc/timetrax/internal/export"
)

type ledgerDay struct {
	Date            string `json:"date"`
	WorkedSeconds   *int64 `json:"worked_seconds"`
	ExpectedSeconds int64  `json:"expected_seconds"`
	DiffSeconds     int64  `json:"diff_seconds"`
	Error           string `json:"error,omitempty"`
}

// LedgerResult is the per-day history of closed days plus the balance.
type LedgerResult struct {
	Days         []ledgerDay `json:"days"`
	Balance      *int64      `json:"balance_seconds"`
	BalanceError string      `json:"balance_error,omitempty"`
}

func (r LedgerResult) String() string {
	var b strings.Builder
	if len(r.Days) == 0 {
		b.WriteString("No closed days yet\n")
	} else {
		fmt.Fprintf(&b, "%-10s %10s %10s %10s\n", "Date", "Worked", "Expected", "Diff")
		for _, d := range r.Days {
			expected := export.FormatDuration(time.Duration(d.ExpectedSeconds) * time.Second)
			if d.Error != "" {
				fmt.Fprintf(&b, "%-10s %10s %10s %10s  %s\n", d.Date, "-", expected, "-", d.Error)
				continue
			}
			fmt.Fprintf(&b, "%-10s %10s %10s %10s\n", d.Date,
				export.FormatDuration(time.Duration(*d.WorkedSeconds)*time.Second),
				expected,
				formatSigned(time.Duration(d.DiffSeconds)*time.Second))
		}
	}
	if r.Balance != nil {
		fmt.Fprintf(&b, "Balance: %s", formatSigned(time.Duration(*r.Balance)*time.Second))
	} else {
		fmt.Fprintf(&b, "Balance unavailable: %s", r.BalanceError)
	}
	return b.String()
}

func newLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "Show worked and expected time for every closed day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(rootOpts, cmd)
		},
	}
}

func runLedger(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	report, err := e.engine.Report()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "build ledger", err, nil)
	}

	res := LedgerResult{Days: make([]ledgerDay, 0, len(report.Days))}
	for _, d := range report.Days {
		day := ledgerDay{
			Date:            d.Date.String(),
			ExpectedSeconds: int64(d.Expected / time.Second),
			DiffSeconds:     int64(d.Diff() / time.Second),
		}
		if d.Err != nil {
			day.Error = d.Err.Error()
		} else {
			secs := int64(d.Worked / time.Second)
			day.WorkedSeconds = &secs
		}
		res.Days = append(res.Days, day)
	}
	if report.DiffErr != nil {
		res.BalanceError = report.DiffErr.Error()
	} else {
		secs := int64(report.Diff / time.Second)
		res.Balance = &secs
	}
	return f.Success(res)
}

// DiffResult is the net balance.
type DiffResult struct {
	Seconds int64 `json:"seconds"`
}

func (r DiffResult) String() string {
	return formatSigned(time.Duration(r.Seconds) * time.Second)
}

func newDiffCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Print the net time balance",
		Long: `Print worked minus expected time over all closed days, plus the
account start balance.

Exits with status 1 when a closed day ends while still working; fix that
day's events first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, cmd)
		},
	}
}

func runDiff(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	diff, err := e.engine.TimeDiff()
	var ie *accounting.InconsistentError
	switch {
	case errors.As(err, &ie):
		return f.Fail(ExitFailure, ErrCodeInconsistent, "time diff", err,
			map[string]string{"date": ie.Date.String()})
	case err != nil:
		return f.Fail(ExitCommandError, ErrCodeStore, "time diff", err, nil)
	}
	return f.Success(DiffResult{Seconds: int64(diff / time.Second)})
}
