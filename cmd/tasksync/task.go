package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasksync/internal/config"
	"tasksync/internal/models"
	"tasksync/internal/store"
)

func newTaskCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(cfg, jsonOutput),
		newTaskListCmd(cfg, jsonOutput),
		newTaskPriorityCmd(cfg, jsonOutput),
		newTaskRmCmd(cfg, jsonOutput),
	)
	return cmd
}

func newTaskAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		priority   int
		projectID  string
		contextIDs []string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a task",
		Args:  requireAtLeastArgs(1, "name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !models.IsValidPriority(priority) {
				return fmt.Errorf("priority must be between %d and %d", models.PriorityUrgent, models.PriorityLow)
			}
			return withStore(cfg, func(st *store.Store) error {
				ctx := cmd.Context()
				if projectID != "" {
					project, err := st.GetProject(ctx, projectID)
					if err != nil {
						return err
					}
					if project == nil {
						return fmt.Errorf("project %s not found", projectID)
					}
				}
				for _, contextID := range contextIDs {
					c, err := st.GetContext(ctx, contextID)
					if err != nil {
						return err
					}
					if c == nil {
						return fmt.Errorf("context %s not found", contextID)
					}
				}

				name := args[0]
				for _, arg := range args[1:] {
					name += " " + arg
				}
				task, _, err := st.CreateTaskWithTransaction(ctx, name, priority, projectID, contextIDs)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(task)
				}
				return writePlain("%s\n", task.ID)
			})
		},
	}
	cmd.Flags().IntVarP(&priority, "priority", "p", models.DefaultPriority, "priority (1=urgent .. 4=low)")
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().StringSliceVarP(&contextIDs, "context", "c", nil, "context id (repeatable)")
	return cmd
}

func newTaskListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var details bool
	var contextID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks by priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				if contextID != "" {
					tasks, err := st.ListTasksByContext(cmd.Context(), contextID)
					if err != nil {
						return err
					}
					if *jsonOutput {
						return writeJSON(tasks)
					}
					return writeTaskList(tasks)
				}
				if details {
					tasks, err := st.ListTasksWithDetails(cmd.Context())
					if err != nil {
						return err
					}
					if *jsonOutput {
						return writeJSON(tasks)
					}
					return writeTaskDetailsList(tasks)
				}
				tasks, err := st.ListTasks(cmd.Context())
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
	cmd.Flags().BoolVar(&details, "details", false, "include project and context names")
	cmd.Flags().StringVar(&contextID, "context", "", "only tasks in this context")
	return cmd
}

func newTaskPriorityCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "priority <id> <priority>",
		Short: "Change a task's priority",
		Args:  requireExactlyArgs(2, "id and priority are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, err := models.ParsePriority(args[1])
			if err != nil {
				return err
			}
			return withStore(cfg, func(st *store.Store) error {
				ctx := cmd.Context()
				task, err := st.GetTask(ctx, args[0])
				if err != nil {
					return err
				}
				if task == nil {
					return fmt.Errorf("task %s not found", args[0])
				}
				txID, err := st.UpdateTaskPriorityWithTransaction(ctx, task.ID, priority)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"id": task.ID, "priority": priority, "transaction": txID})
				}
				return writePlain("%s -> P%d\n", task.ID, priority)
			})
		},
	}
}

func newTaskRmCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				task, err := st.GetTask(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if task == nil {
					return fmt.Errorf("task %s not found", args[0])
				}
				txID, err := st.DeleteTaskWithTransaction(cmd.Context(), *task)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]string{"id": task.ID, "transaction": txID})
				}
				return writePlain("deleted %s\n", task.ID)
			})
		},
	}
}
