package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasksync/internal/config"
	"tasksync/internal/store"
)

func newLinkCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "link <task-id> <context-id>",
		Short: "Link a task to a context",
		Args:  requireExactlyArgs(2, "task id and context id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				ctx := cmd.Context()
				task, err := st.GetTask(ctx, args[0])
				if err != nil {
					return err
				}
				if task == nil {
					return fmt.Errorf("task %s not found", args[0])
				}
				c, err := st.GetContext(ctx, args[1])
				if err != nil {
					return err
				}
				if c == nil {
					return fmt.Errorf("context %s not found", args[1])
				}

				assoc, _, err := st.CreateContextTaskWithTransaction(ctx, c.ID, task.ID)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(assoc)
				}
				return writePlain("%s\n", assoc.ID)
			})
		},
	}
}

func newUnlinkCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <task-id> <context-id>",
		Short: "Remove a task-context link",
		Args:  requireExactlyArgs(2, "task id and context id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				ctx := cmd.Context()
				assocs, err := st.ListContextTasks(ctx)
				if err != nil {
					return err
				}
				for _, assoc := range assocs {
					if assoc.LocalTaskID != args[0] || assoc.LocalContextID != args[1] {
						continue
					}
					txID, err := st.DeleteContextTaskWithTransaction(ctx, assoc)
					if err != nil {
						return err
					}
					if *jsonOutput {
						return writeJSON(map[string]string{"id": assoc.ID, "transaction": txID})
					}
					return writePlain("unlinked %s\n", assoc.ID)
				}
				return fmt.Errorf("no link between task %s and context %s", args[0], args[1])
			})
		},
	}
}
