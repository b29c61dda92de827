package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"tasksync/internal/config"
	"tasksync/internal/store"
	syncpkg "tasksync/internal/sync"
)

func newSyncCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var pullOnly bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle: pull remote state, then replay queued transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				ctx := cmd.Context()
				remote := newRemote(cfg)

				if err := remote.Ping(ctx); err != nil {
					return err
				}

				engine := syncpkg.NewEngine(st, remote, slog.Default())
				if err := engine.Run(ctx); err != nil {
					return err
				}

				if !pullOnly {
					proc := syncpkg.NewProcessor(st, remote, syncpkg.LogSink{}, slog.Default())
					proc.SetBatchSize(cfg.Sync.BatchSize)
					if err := proc.ProcessPending(ctx); err != nil {
						return err
					}
				}

				stalled, err := st.StalledTransactions(ctx)
				if err != nil {
					return err
				}
				summary := map[string]any{"status": "ok", "stalled": len(stalled)}
				if *jsonOutput {
					return writeJSON(summary)
				}
				if len(stalled) > 0 {
					return writePlain("sync complete; %d stalled transaction(s), see: tasksync tx stalled\n", len(stalled))
				}
				return writePlain("sync complete\n")
			})
		},
	}
	cmd.Flags().BoolVar(&pullOnly, "pull-only", false, "merge remote state without replaying the queue")
	return cmd
}
