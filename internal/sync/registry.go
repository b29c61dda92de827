package sync

import (
	"context"
	"fmt"

	"tasksync/internal/api"
	"tasksync/internal/models"
	"tasksync/internal/store"
)

// snapshot holds the complete remote state fetched ahead of a merge.
type snapshot struct {
	projects     []api.RemoteProject
	contexts     []api.RemoteContext
	tasks        []api.RemoteTask
	associations []api.RemoteAssociation
}

// tableSync declares how one table takes part in the initial sync: which
// tables must merge first, how its remote set is fetched, and how remote
// rows map onto local rows. Mapping is typed per table; no SQL is
// assembled from column lists at runtime.
type tableSync struct {
	table     string
	dependsOn []string
	fetch     func(ctx context.Context, remote Remote, snap *snapshot) error
	merge     func(ctx context.Context, tx *store.Tx, snap *snapshot) error
}

// registry returns the per-table sync configuration in dependency order:
// projects, contexts, tasks, associations. Later merges resolve foreign
// keys against rows the earlier merges already wrote, so the order is
// load-bearing.
func registry() []tableSync {
	return []tableSync{
		{
			table: models.TableProjects,
			fetch: func(ctx context.Context, remote Remote, snap *snapshot) error {
				items, err := remote.ListProjects(ctx)
				snap.projects = items
				return err
			},
			merge: mergeProjects,
		},
		{
			table: models.TableContexts,
			fetch: func(ctx context.Context, remote Remote, snap *snapshot) error {
				items, err := remote.ListContexts(ctx)
				snap.contexts = items
				return err
			},
			merge: mergeContexts,
		},
		{
			table:     models.TableTasks,
			dependsOn: []string{models.TableProjects},
			fetch: func(ctx context.Context, remote Remote, snap *snapshot) error {
				items, err := remote.ListTasks(ctx)
				snap.tasks = items
				return err
			},
			merge: mergeTasks,
		},
		{
			table:     models.TableContextTasks,
			dependsOn: []string{models.TableContexts, models.TableTasks},
			fetch: func(ctx context.Context, remote Remote, snap *snapshot) error {
				items, err := remote.ListAssociations(ctx)
				snap.associations = items
				return err
			},
			merge: mergeAssociations,
		},
	}
}

// validateRegistry checks that every dependsOn entry merges earlier in
// the registry than its dependent.
func validateRegistry(tables []tableSync) error {
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		for _, dep := range t.dependsOn {
			if !seen[dep] {
				return fmt.Errorf("table %s depends on %s which is not merged before it", t.table, dep)
			}
		}
		seen[t.table] = true
	}
	return nil
}

func mergeProjects(ctx context.Context, tx *store.Tx, snap *snapshot) error {
	locals, err := tx.Projects(ctx)
	if err != nil {
		return err
	}
	byServer := make(map[string]models.Project, len(locals))
	for _, local := range locals {
		if local.ServerID != "" {
			byServer[local.ServerID] = local
		}
	}

	for _, remote := range snap.projects {
		local, ok := byServer[remote.ID]
		if ok {
			// A soft-deleted row keeps its pending delete intent; the
			// processor will reconcile it against the backend.
			if local.Status == models.StatusDeleted {
				continue
			}
			// Matched rows bump their version only when the remote copy
			// differs, so repeated syncs of unchanged data stay
			// idempotent. Associations never bump (see mergeAssociations).
			bump := local.Name != remote.Name
			if err := tx.UpdateProjectFromRemote(ctx, remote.ID, remote.Name, bump); err != nil {
				return err
			}
			continue
		}
		if err := tx.InsertProjectIgnore(ctx, models.Project{
			ID:        store.NewID(store.ProjectIDPrefix),
			Name:      remote.Name,
			Status:    models.StatusSynced,
			ServerID:  remote.ID,
			CreatedAt: remote.CreatedAt.UnixMilli(),
			Version:   1,
		}); err != nil {
			return err
		}
	}

	// Preserve local work that never synced.
	for _, local := range locals {
		if local.ServerID != "" {
			continue
		}
		if err := tx.InsertProjectIgnore(ctx, local); err != nil {
			return err
		}
	}
	return nil
}

func mergeContexts(ctx context.Context, tx *store.Tx, snap *snapshot) error {
	locals, err := tx.Contexts(ctx)
	if err != nil {
		return err
	}
	byServer := make(map[string]models.Context, len(locals))
	for _, local := range locals {
		if local.ServerID != "" {
			byServer[local.ServerID] = local
		}
	}

	for _, remote := range snap.contexts {
		local, ok := byServer[remote.ID]
		if ok {
			if local.Status == models.StatusDeleted {
				continue
			}
			bump := local.Name != remote.Name
			if err := tx.UpdateContextFromRemote(ctx, remote.ID, remote.Name, bump); err != nil {
				return err
			}
			continue
		}
		if err := tx.InsertContextIgnore(ctx, models.Context{
			ID:        store.NewID(store.ContextIDPrefix),
			Name:      remote.Name,
			Status:    models.StatusSynced,
			ServerID:  remote.ID,
			CreatedAt: remote.CreatedAt.UnixMilli(),
			Version:   1,
		}); err != nil {
			return err
		}
	}

	for _, local := range locals {
		if local.ServerID != "" {
			continue
		}
		if err := tx.InsertContextIgnore(ctx, local); err != nil {
			return err
		}
	}
	return nil
}

func mergeTasks(ctx context.Context, tx *store.Tx, snap *snapshot) error {
	locals, err := tx.Tasks(ctx)
	if err != nil {
		return err
	}
	byServer := make(map[string]models.Task, len(locals))
	for _, local := range locals {
		if local.ServerID != "" {
			byServer[local.ServerID] = local
		}
	}

	// Projects merged earlier in this same unit; read them back to
	// resolve server project ids to local ids.
	projects, err := tx.Projects(ctx)
	if err != nil {
		return err
	}
	projectByServer := make(map[string]models.Project, len(projects))
	for _, p := range projects {
		if p.ServerID != "" {
			projectByServer[p.ServerID] = p
		}
	}

	for _, remote := range snap.tasks {
		localProjectID := ""
		if remote.ProjectID != "" {
			project, ok := projectByServer[remote.ProjectID]
			if !ok {
				return &MissingDependencyError{
					EntityType: models.TableTasks,
					EntityID:   remote.ID,
					Missing:    fmt.Sprintf("project with server id %s", remote.ProjectID),
				}
			}
			localProjectID = project.ID
		}

		local, ok := byServer[remote.ID]
		if ok {
			if local.Status == models.StatusDeleted {
				continue
			}
			bump := local.Name != remote.Name ||
				local.Priority != remote.Priority ||
				local.ProjectID != localProjectID
			if err := tx.UpdateTaskFromRemote(ctx, remote.ID, remote.Name, remote.Priority, localProjectID, bump); err != nil {
				return err
			}
			continue
		}
		if err := tx.InsertTaskIgnore(ctx, models.Task{
			ID:        store.NewID(store.TaskIDPrefix),
			Name:      remote.Name,
			Priority:  remote.Priority,
			ProjectID: localProjectID,
			Status:    models.StatusSynced,
			ServerID:  remote.ID,
			CreatedAt: remote.CreatedAt.UnixMilli(),
			Version:   1,
		}); err != nil {
			return err
		}
	}

	for _, local := range locals {
		if local.ServerID != "" {
			continue
		}
		if err := tx.InsertTaskIgnore(ctx, local); err != nil {
			return err
		}
	}
	return nil
}

func mergeAssociations(ctx context.Context, tx *store.Tx, snap *snapshot) error {
	locals, err := tx.ContextTasks(ctx)
	if err != nil {
		return err
	}
	byServer := make(map[string]models.ContextTask, len(locals))
	for _, local := range locals {
		if local.ServerID != "" {
			byServer[local.ServerID] = local
		}
	}

	contexts, err := tx.Contexts(ctx)
	if err != nil {
		return err
	}
	contextByServer := make(map[string]models.Context, len(contexts))
	for _, c := range contexts {
		if c.ServerID != "" {
			contextByServer[c.ServerID] = c
		}
	}

	tasks, err := tx.Tasks(ctx)
	if err != nil {
		return err
	}
	taskByServer := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		if t.ServerID != "" {
			taskByServer[t.ServerID] = t
		}
	}

	for _, remote := range snap.associations {
		c, ok := contextByServer[remote.ContextID]
		if !ok {
			return &MissingDependencyError{
				EntityType: models.TableContextTasks,
				EntityID:   remote.ID,
				Missing:    fmt.Sprintf("context with server id %s", remote.ContextID),
			}
		}
		t, ok := taskByServer[remote.TaskID]
		if !ok {
			return &MissingDependencyError{
				EntityType: models.TableContextTasks,
				EntityID:   remote.ID,
				Missing:    fmt.Sprintf("task with server id %s", remote.TaskID),
			}
		}

		local, ok := byServer[remote.ID]
		if ok {
			if local.Status == models.StatusDeleted {
				continue
			}
			if err := tx.UpdateContextTaskFromRemote(ctx, remote.ID, c.ID, t.ID, remote.ContextID, remote.TaskID); err != nil {
				return err
			}
			continue
		}
		if err := tx.InsertContextTaskIgnore(ctx, models.ContextTask{
			ID:              store.NewID(store.ContextTaskIDPrefix),
			LocalContextID:  c.ID,
			LocalTaskID:     t.ID,
			ServerID:        remote.ID,
			ServerContextID: remote.ContextID,
			ServerTaskID:    remote.TaskID,
			Status:          models.StatusSynced,
			CreatedAt:       remote.CreatedAt.UnixMilli(),
			Version:         1,
		}); err != nil {
			return err
		}
	}

	for _, local := range locals {
		if local.ServerID != "" {
			continue
		}
		if err := tx.InsertContextTaskIgnore(ctx, local); err != nil {
			return err
		}
	}
	return nil
}
