package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tasksync/internal/config"
	"tasksync/internal/store"
)

func newProjectCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(
		newProjectAddCmd(cfg, jsonOutput),
		newProjectListCmd(cfg, jsonOutput),
		newProjectRmCmd(cfg, jsonOutput),
	)
	return cmd
}

func newProjectAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args:  requireAtLeastArgs(1, "name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				project, _, err := st.CreateProjectWithTransaction(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(project)
				}
				return writePlain("%s\n", project.ID)
			})
		},
	}
}

func newProjectListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				projects, err := st.ListProjects(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(projects)
				}
				return writeProjectList(projects)
			})
		},
	}
}

func newProjectRmCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a project",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				project, err := st.GetProject(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if project == nil {
					return fmt.Errorf("project %s not found", args[0])
				}
				txID, err := st.DeleteProjectWithTransaction(cmd.Context(), *project)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]string{"id": project.ID, "transaction": txID})
				}
				return writePlain("deleted %s\n", project.ID)
			})
		},
	}
}
