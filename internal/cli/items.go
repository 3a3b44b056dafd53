package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetrax/internal/store"
)

type itemJSON struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// ItemsResult lists work items.
type ItemsResult struct {
	Items []itemJSON `json:"items"`
}

func (r ItemsResult) String() string {
	if len(r.Items) == 0 {
		return "No work items"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %-28s %s", "ID", "Name", "Status")
	for _, it := range r.Items {
		status := "visible"
		if !it.Visible {
			status = "hidden"
		}
		fmt.Fprintf(&b, "\n%-5d %-28s %s", it.ID, it.Name, status)
	}
	return b.String()
}

// ItemResult reports a change to a single work item.
type ItemResult struct {
	Item    itemJSON `json:"item"`
	Created bool     `json:"created,omitempty"`
	action  string
}

func (r ItemResult) String() string {
	return fmt.Sprintf("%s %q (id %d)", r.action, r.Item.Name, r.Item.ID)
}

func newItemsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List and manage work items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemsList(rootOpts, cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a work item unless it already exists",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemsAdd(rootOpts, cmd, strings.Join(args, " "))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "hide <item>",
		Short: "Hide a work item from the available list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemsVisible(rootOpts, cmd, args[0], false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <item>",
		Short: "Make a hidden work item available again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemsVisible(rootOpts, cmd, args[0], true)
		},
	})

	return cmd
}

func toItemJSON(it store.WorkItem) itemJSON {
	return itemJSON{ID: it.ID, Name: it.Name, Visible: it.Visible}
}

func runItemsList(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	items, err := e.store.WorkItems()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "list work items", err, nil)
	}
	res := ItemsResult{Items: make([]itemJSON, 0, len(items))}
	for _, it := range items {
		res.Items = append(res.Items, toItemJSON(it))
	}
	return f.Success(res)
}

func runItemsAdd(opts *RootOptions, cmd *cobra.Command, name string) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	name = strings.TrimSpace(name)
	if name == "" {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgument, "add work item", errors.New("name must not be empty"), nil)
	}

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	created, err := e.store.AddWorkItem(name)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "add work item", err, nil)
	}
	it, err := resolveItem(e.store, name)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "add work item", err, nil)
	}

	res := ItemResult{Item: toItemJSON(it), Created: created, action: "Added"}
	if !created {
		res.action = "Exists"
	}
	return f.Success(res)
}

func runItemsVisible(opts *RootOptions, cmd *cobra.Command, ref string, visible bool) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	it, err := resolveItem(e.store, ref)
	if errors.Is(err, errItemNotFound) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, "update work item", err, nil)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "update work item", err, nil)
	}
	if err := e.store.SetWorkItemVisible(it.ID, visible); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "update work item", err, nil)
	}
	it.Visible = visible

	res := ItemResult{Item: toItemJSON(it), action: "Hidden"}
	if visible {
		res.action = "Shown"
	}
	return f.Success(res)
}
