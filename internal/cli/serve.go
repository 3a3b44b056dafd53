package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetrax/internal/logging"
	"github.com/sadopc/timetrax/internal/server"
)

type serveOptions struct {
	listen string
}

func newServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and Prometheus metrics",
		Long: `Serve the JSON API under /api and Prometheus metrics under /metrics.

SIGINT or SIGTERM shuts the server down gracefully and records the
shutdown time before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.listen, "listen", "", "listen address (overrides config)")

	return cmd
}

func runServe(ctx context.Context, rootOpts *RootOptions, opts *serveOptions, cmd *cobra.Command) error {
	e, err := openCommandEnv(rootOpts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	addr := e.cfg.Listen
	if opts.listen != "" {
		addr = opts.listen
	}

	e.logger.Debug("serve", logging.KeyPath, e.cfg.Database)
	if err := server.New(e.store, e.engine, e.logger).Run(ctx, addr); err != nil {
		return WrapExitError(ExitCommandError, "serve", err)
	}
	return nil
}
