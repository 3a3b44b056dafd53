package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetrax/internal/accounting"
	"github.com/sadopc/timetrax/internal/config"
	"github.com/sadopc/timetrax/internal/holiday"
	"github.com/sadopc/timetrax/internal/logging"
	"github.com/sadopc/timetrax/internal/store"
)

// env is what a command runs against: an open store and the engine over
// it. Close writes the shutdown marker.
type env struct {
	cfg      *config.Config
	store    *store.Store
	engine   *accounting.Engine
	holidays *holiday.Calendar
	logger   *slog.Logger

	logFile io.Closer
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if opts.DBPath != "" {
		cfg.Database = opts.DBPath
	}
	return cfg, nil
}

// openCommandEnv is openEnv for one-shot commands: logs go to stderr.
func openCommandEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return openEnv(opts, cfg, cmd.ErrOrStderr())
}

func openEnv(opts *RootOptions, cfg *config.Config, logOut io.Writer) (*env, error) {
	level := logging.ParseLevel(cfg.Log.Level)
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := logging.Init(logging.Config{
		Level:  level,
		JSON:   cfg.Log.JSON,
		Output: logOut,
	})

	storeOpts := []store.Option{
		store.WithLogger(logger),
		store.WithSeedItems(cfg.SeedItems...),
	}
	storeOpts = append(storeOpts, opts.storeOpts...)

	s, err := store.Open(cfg.Database, storeOpts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	logger.Debug("opened database", logging.KeyPath, cfg.Database)

	holidays := holiday.New()
	return &env{
		cfg:      cfg,
		store:    s,
		engine:   accounting.New(s, holidays, cfg.Region, accounting.WithLogger(logger)),
		holidays: holidays,
		logger:   logger,
	}, nil
}

// openLogFile opens timetrax.log next to the database for appending.
func openLogFile(dbPath string) (*os.File, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, store.AppName+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func (e *env) Close() error {
	err := e.store.Close()
	if e.logFile != nil {
		e.logFile.Close()
	}
	return err
}
