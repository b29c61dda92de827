package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tasksync/internal/config"
	"tasksync/internal/models"
	"tasksync/internal/store"
)

type seedTask struct {
	Name     string   `yaml:"name"`
	Priority int      `yaml:"priority"`
	Project  string   `yaml:"project"`
	Contexts []string `yaml:"contexts"`
}

type seedFile struct {
	Projects []string   `yaml:"projects"`
	Contexts []string   `yaml:"contexts"`
	Tasks    []seedTask `yaml:"tasks"`
}

type importSummary struct {
	Projects int `json:"projects"`
	Contexts int `json:"contexts"`
	Tasks    int `json:"tasks"`
}

func newImportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import projects, contexts and tasks from a YAML seed file",
		Args:  requireExactlyArgs(1, "file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var seed seedFile
			if err := yaml.Unmarshal(data, &seed); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			if err := validateSeed(seed); err != nil {
				return err
			}

			return withStore(cfg, func(st *store.Store) error {
				summary, err := importSeed(cmd.Context(), st, seed)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(summary)
				}
				return writePlain("imported %d project(s), %d context(s), %d task(s)\n",
					summary.Projects, summary.Contexts, summary.Tasks)
			})
		},
	}
}

func validateSeed(seed seedFile) error {
	for _, task := range seed.Tasks {
		if task.Name == "" {
			return fmt.Errorf("task without a name")
		}
		if task.Priority != 0 && !models.IsValidPriority(task.Priority) {
			return fmt.Errorf("task %q: priority must be between %d and %d",
				task.Name, models.PriorityUrgent, models.PriorityLow)
		}
	}
	return nil
}

// importSeed creates the seed entities through the same queue-backed
// operations the interactive commands use, so everything it writes is
// replayed on the next sync. Names are matched against existing visible
// rows to keep repeated imports from duplicating them.
func importSeed(ctx context.Context, st *store.Store, seed seedFile) (importSummary, error) {
	var summary importSummary

	projectIDs := make(map[string]string)
	existingProjects, err := st.ListProjects(ctx)
	if err != nil {
		return summary, err
	}
	for _, p := range existingProjects {
		projectIDs[p.Name] = p.ID
	}
	for _, name := range seed.Projects {
		if _, ok := projectIDs[name]; ok {
			continue
		}
		project, _, err := st.CreateProjectWithTransaction(ctx, name)
		if err != nil {
			return summary, err
		}
		projectIDs[name] = project.ID
		summary.Projects++
	}

	contextIDs := make(map[string]string)
	existingContexts, err := st.ListContexts(ctx)
	if err != nil {
		return summary, err
	}
	for _, c := range existingContexts {
		contextIDs[c.Name] = c.ID
	}
	for _, name := range seed.Contexts {
		if _, ok := contextIDs[name]; ok {
			continue
		}
		c, _, err := st.CreateContextWithTransaction(ctx, name)
		if err != nil {
			return summary, err
		}
		contextIDs[name] = c.ID
		summary.Contexts++
	}

	for _, task := range seed.Tasks {
		projectID := ""
		if task.Project != "" {
			id, ok := projectIDs[task.Project]
			if !ok {
				return summary, fmt.Errorf("task %q references unknown project %q", task.Name, task.Project)
			}
			projectID = id
		}
		var taskContexts []string
		for _, contextName := range task.Contexts {
			id, ok := contextIDs[contextName]
			if !ok {
				return summary, fmt.Errorf("task %q references unknown context %q", task.Name, contextName)
			}
			taskContexts = append(taskContexts, id)
		}
		priority := task.Priority
		if priority == 0 {
			priority = models.DefaultPriority
		}
		if _, _, err := st.CreateTaskWithTransaction(ctx, task.Name, priority, projectID, taskContexts); err != nil {
			return summary, err
		}
		summary.Tasks++
	}

	return summary, nil
}
