package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetrax/internal/accounting"
	"github.com/sadopc/timetrax/internal/export"
)

type itemTime struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Seconds int64  `json:"seconds"`
}

// StatusResult is today's state as printed by `timetrax status`.
type StatusResult struct {
	Date          string     `json:"date"`
	Working       bool       `json:"working"`
	ItemID        *int64     `json:"item_id"`
	Item          string     `json:"item,omitempty"`
	Since         *time.Time `json:"since,omitempty"`
	WorkedSeconds int64      `json:"worked_seconds"`
	Items         []itemTime `json:"items"`
	Balance       *int64     `json:"balance_seconds"`
	BalanceError  string     `json:"balance_error,omitempty"`
}

func (r StatusResult) String() string {
	var b strings.Builder
	if r.Working {
		fmt.Fprintf(&b, "Working on %s", r.Item)
		if r.Since != nil {
			fmt.Fprintf(&b, " since %s", r.Since.Format("15:04:05"))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Idle\n")
	}
	fmt.Fprintf(&b, "Today (%s): %s\n", r.Date, export.FormatDuration(time.Duration(r.WorkedSeconds)*time.Second))
	for _, it := range r.Items {
		fmt.Fprintf(&b, "  %-24s %s\n", it.Name, export.FormatDuration(time.Duration(it.Seconds)*time.Second))
	}
	if r.Balance != nil {
		fmt.Fprintf(&b, "Balance: %s", formatSigned(time.Duration(*r.Balance)*time.Second))
	} else {
		fmt.Fprintf(&b, "Balance unavailable: %s", r.BalanceError)
	}
	return b.String()
}

func newStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current work state, today's time and the balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	today, err := e.engine.Today()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "read today", err, nil)
	}
	names, err := itemNames(e.store)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "list work items", err, nil)
	}

	res := StatusResult{
		Date:          today.Date.String(),
		WorkedSeconds: int64(today.Worked / time.Second),
		Items:         []itemTime{},
	}
	if id, ok := today.Current.Item(); ok {
		res.Working = true
		res.ItemID = &id
		res.Item = names[id]
		if n := len(today.Events); n > 0 {
			since := today.Events[n-1].Start.In(e.store.Location())
			res.Since = &since
		}
	}
	for id, d := range today.PerItem {
		res.Items = append(res.Items, itemTime{ID: id, Name: names[id], Seconds: int64(d / time.Second)})
	}
	sort.Slice(res.Items, func(i, j int) bool { return res.Items[i].ID < res.Items[j].ID })

	diff, err := e.engine.TimeDiff()
	var ie *accounting.InconsistentError
	switch {
	case errors.As(err, &ie):
		res.BalanceError = fmt.Sprintf("%s has no end of workday", ie.Date)
	case err != nil:
		res.BalanceError = err.Error()
	default:
		secs := int64(diff / time.Second)
		res.Balance = &secs
	}

	return f.Success(res)
}

// formatSigned is export.FormatDuration with an explicit sign.
func formatSigned(d time.Duration) string {
	if d >= 0 {
		return "+" + export.FormatDuration(d)
	}
	return export.FormatDuration(d)
}
