package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tasksync/internal/config"
	"tasksync/internal/store"
)

func newContextCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage contexts",
	}
	cmd.AddCommand(
		newContextAddCmd(cfg, jsonOutput),
		newContextListCmd(cfg, jsonOutput),
		newContextRmCmd(cfg, jsonOutput),
		newContextTasksCmd(cfg, jsonOutput),
	)
	return cmd
}

func newContextAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a context",
		Args:  requireAtLeastArgs(1, "name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				c, _, err := st.CreateContextWithTransaction(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(c)
				}
				return writePlain("%s\n", c.ID)
			})
		},
	}
}

func newContextListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contexts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				contexts, err := st.ListContexts(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(contexts)
				}
				return writeContextList(contexts)
			})
		},
	}
}

func newContextRmCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a context",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				c, err := st.GetContext(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if c == nil {
					return fmt.Errorf("context %s not found", args[0])
				}
				txID, err := st.DeleteContextWithTransaction(cmd.Context(), *c)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]string{"id": c.ID, "transaction": txID})
				}
				return writePlain("deleted %s\n", c.ID)
			})
		},
	}
}

func newContextTasksCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks <id>",
		Short: "List tasks linked to a context",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				tasks, err := st.ListTasksByContext(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(tasks)
				}
				return writeTaskList(tasks)
			})
		},
	}
}
