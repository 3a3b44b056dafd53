package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetrax/internal/config"
)

// ConfigResult reports a config file key.
type ConfigResult struct {
	Path  string `json:"path"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (r ConfigResult) String() string {
	return fmt.Sprintf("%s = %s (%s)", r.Key, r.Value, r.Path)
}

func newConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Show the effective value of a config key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(rootOpts, cmd, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a config key to the config file",
		Long: `Write one of database, region, listen or log.level to the config file.
The file is created if it does not exist. Environment overrides are not
written back.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(rootOpts, cmd, args[0], args[1])
		},
	})

	return cmd
}

func configPath(opts *RootOptions) string {
	if opts.ConfigPath != "" {
		return opts.ConfigPath
	}
	return config.DefaultPath()
}

func runConfigGet(opts *RootOptions, cmd *cobra.Command, key string) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if !slices.Contains(config.SettableKeys, key) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, "read config",
			fmt.Errorf("unknown config key %q", key), nil)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	return f.Success(ConfigResult{Path: configPath(opts), Key: key, Value: cfg.Value(key)})
}

func runConfigSet(opts *RootOptions, cmd *cobra.Command, key, value string) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	path := configPath(opts)

	cfg, err := config.Set(path, key, value)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgument, "set config", err, nil)
	}
	return f.Success(ConfigResult{Path: path, Key: key, Value: cfg.Value(key)})
}
