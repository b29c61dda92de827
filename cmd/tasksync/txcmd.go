package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasksync/internal/config"
	"tasksync/internal/store"
)

func newTxCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Inspect and manage the offline transaction queue",
	}
	cmd.AddCommand(
		newTxListCmd(cfg, jsonOutput),
		newTxStalledCmd(cfg, jsonOutput),
		newTxRequeueCmd(cfg, jsonOutput),
		newTxDiscardCmd(cfg, jsonOutput),
	)
	return cmd
}

func newTxListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued transactions, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				txns, err := st.ListTransactions(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(txns)
				}
				return writeTransactionList(txns)
			})
		},
	}
}

func newTxStalledCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "stalled",
		Short: "List transactions that exhausted their retries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				txns, err := st.StalledTransactions(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(txns)
				}
				return writeTransactionList(txns)
			})
		},
	}
}

func newTxRequeueCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue <id>",
		Short: "Reset a stalled transaction's retry count",
		Args:  requireExactlyArgs(1, "transaction id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				txn, err := st.GetTransaction(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if txn == nil {
					return fmt.Errorf("transaction %s not found", args[0])
				}
				if err := st.RequeueTransaction(cmd.Context(), txn.ID); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]string{"id": txn.ID, "status": "requeued"})
				}
				return writePlain("requeued %s\n", txn.ID)
			})
		},
	}
}

func newTxDiscardCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "discard <id>",
		Short: "Drop a queued transaction without replaying it",
		Args:  requireExactlyArgs(1, "transaction id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				txn, err := st.GetTransaction(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if txn == nil {
					return fmt.Errorf("transaction %s not found", args[0])
				}
				if err := st.DiscardTransaction(cmd.Context(), txn.ID); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]string{"id": txn.ID, "status": "discarded"})
				}
				return writePlain("discarded %s\n", txn.ID)
			})
		},
	}
}
