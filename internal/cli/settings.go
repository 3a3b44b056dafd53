package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetrax/internal/store"
)

// SettingsResult lists stored key/value settings.
type SettingsResult struct {
	Settings []store.Setting `json:"settings"`
}

func (r SettingsResult) String() string {
	var b strings.Builder
	for i, s := range r.Settings {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-16s %s", s.Key, s.Value)
	}
	return b.String()
}

// durationSettings are the keys `settings set` accepts. Values are stored
// as whole seconds.
var durationSettings = map[string]func(*store.Store, time.Duration) error{
	store.KeyDefaultTime:  (*store.Store).SetDefaultTime,
	store.KeyAccountStart: (*store.Store).SetAccountStart,
}

func newSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change stored settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Show one setting, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return runSettingsGet(rootOpts, cmd, key)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <duration>",
		Short: "Set default_time or account_start",
		Long: `Set default_time (the quota recorded for working days that have none yet)
or account_start (the balance carried over from before tracking began).

Durations are Go durations such as 7h30m or decimal hours such as 7.5.
Pass negative values after "--", e.g. settings set account_start -- -2h.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsSet(rootOpts, cmd, args[0], args[1])
		},
	})

	return cmd
}

func runSettingsGet(opts *RootOptions, cmd *cobra.Command, key string) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if key == "" {
		all, err := e.store.GetAllSettings()
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "read settings", err, nil)
		}
		return f.Success(SettingsResult{Settings: all})
	}

	v, err := e.store.GetSetting(key)
	if errors.Is(err, store.ErrSettingNotFound) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, "read setting", err, nil)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "read setting", err, nil)
	}
	return f.Success(SettingsResult{Settings: []store.Setting{{Key: key, Value: v}}})
}

func runSettingsSet(opts *RootOptions, cmd *cobra.Command, key, value string) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	set, ok := durationSettings[key]
	if !ok {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgument, "set setting",
			fmt.Errorf("unknown setting %q: must be %s or %s", key, store.KeyDefaultTime, store.KeyAccountStart), nil)
	}
	d, err := parseDuration(value)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgument, "set setting", err, nil)
	}

	e, err := openCommandEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := set(e.store, d); err != nil {
		var cfgErr *store.ConfigError
		if errors.As(err, &cfgErr) {
			return f.Fail(ExitCommandError, ErrCodeInvalidArgument, "set setting", err, nil)
		}
		return f.Fail(ExitCommandError, ErrCodeStore, "set setting", err, nil)
	}

	v, err := e.store.GetSetting(key)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "read setting", err, nil)
	}
	return f.Success(SettingsResult{Settings: []store.Setting{{Key: key, Value: v}}})
}
