package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paperflow-app/paperflow/internal/logger"
	"github.com/paperflow-app/paperflow/internal/server"
	"github.com/paperflow-app/paperflow/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port int
	Env  string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API",
		Long: `Run the local HTTP JSON API over the paper store.

The server exposes workspaces, papers, notes, tags, search, settings
and Prometheus metrics, and shuts down gracefully on SIGINT/SIGTERM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "listen port (overrides config)")
	cmd.Flags().StringVar(&opts.Env, "env", "local", "environment (local|dev|prod)")

	return cmd
}

func runServe(opts *ServeOptions) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	if opts.Port > 0 {
		cfg.HTTP.Port = opts.Port
	}

	log, err := logger.New(opts.Env, cfg.Logging.Level)
	if err != nil {
		return WrapExitError(ExitCommandError, "building logger", err)
	}
	defer func() { _ = log.Sync() }()

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "creating data dir", err)
	}

	st, err := store.Open(cfg.DatabasePath(), store.WithLogger(log))
	if err != nil {
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer func() { _ = st.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(st, cfg, log)
	if err := server.Run(ctx, cfg, srv.Router(), log); err != nil {
		log.Error("server exited", zap.Error(err))
		return WrapExitError(ExitFailure, "server exited", err)
	}
	return nil
}
