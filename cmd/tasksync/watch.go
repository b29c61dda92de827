package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tasksync/internal/config"
	"tasksync/internal/store"
	syncpkg "tasksync/internal/sync"
)

func newWatchCmd(cfg *config.Config) *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the sync runtime until interrupted",
		Long: `Watch runs an initial sync, then keeps probing the backend and
replaying queued transactions whenever it becomes reachable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if logFile != "" {
				if err := configureWatchLogger(logFile, cfg.LogLevel); err != nil {
					return err
				}
			}
			return withStore(cfg, func(st *store.Store) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				runtime := syncpkg.NewRuntime(st, newRemote(cfg), syncpkg.RuntimeOptions{
					BatchSize:    cfg.Sync.BatchSize,
					PollInterval: cfg.PollInterval(),
					Sink:         syncpkg.LogSink{},
					Logger:       slog.Default(),
				})

				err := runtime.Start(ctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to a rotating file instead of stderr")
	return cmd
}
