package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetrax/internal/logging"
	"github.com/sadopc/timetrax/internal/store"
)

// WorkResult reports a start or stop.
type WorkResult struct {
	Working bool   `json:"working"`
	ItemID  *int64 `json:"item_id"`
	Item    string `json:"item,omitempty"`
	Changed bool   `json:"changed"`
}

func (r WorkResult) String() string {
	switch {
	case r.Working && r.Changed:
		return "Working on " + r.Item
	case r.Working:
		return "Already working on " + r.Item
	case r.Changed:
		return "Stopped"
	default:
		return "Not working"
	}
}

func newStartCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start <item>",
		Short: "Start working on an item (name or id)",
		Long: `Start working on a work item. Whatever was running before ends now.

The item is looked up by id first, then by name. Hidden items cannot be
started; show them again with "timetrax items show".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(rootOpts, cmd, args[0])
		},
	}
}

func runStart(opts *RootOptions, cmd *cobra.Command, ref string) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	it, err := resolveItem(e.store, ref)
	if errors.Is(err, errItemNotFound) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, "start", err, nil)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "start", err, nil)
	}
	if !it.Visible {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgument, "start",
			fmt.Errorf("work item %q is hidden", it.Name), nil)
	}

	cur, err := e.store.CurrentWork()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "start", err, nil)
	}
	res := WorkResult{Working: true, ItemID: &it.ID, Item: it.Name}
	if id, ok := cur.Item(); ok && id == it.ID {
		return f.Success(res)
	}

	if err := e.store.SetCurrentWork(store.Working(it.ID)); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "start", err, nil)
	}
	e.logger.Debug("started work", logging.KeyItem, it.ID)
	res.Changed = true
	return f.Success(res)
}

func newStopCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop working",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(rootOpts, cmd)
		},
	}
}

func runStop(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	cur, err := e.store.CurrentWork()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "stop", err, nil)
	}
	if !cur.IsWorking() {
		return f.Success(WorkResult{})
	}
	if err := e.store.SetCurrentWork(store.Idle); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "stop", err, nil)
	}
	e.logger.Debug("stopped work")
	return f.Success(WorkResult{Changed: true})
}
