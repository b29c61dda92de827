package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"tasksync/internal/api"
	"tasksync/internal/models"
)

func seedRemote() *fakeRemote {
	now := time.Now()
	return &fakeRemote{
		nextID: 100,
		projects: []api.RemoteProject{
			{ID: "rp-1", Name: "Groceries", CreatedAt: now},
		},
		contexts: []api.RemoteContext{
			{ID: "rc-1", Name: "home", CreatedAt: now},
		},
		tasks: []api.RemoteTask{
			{ID: "rt-1", Name: "Buy milk", Priority: models.PriorityHigh, ProjectID: "rp-1", CreatedAt: now},
		},
		associations: []api.RemoteAssociation{
			{ID: "ra-1", ContextID: "rc-1", TaskID: "rt-1", CreatedAt: now},
		},
	}
}

func TestInitialSyncImportsRemoteState(t *testing.T) {
	st := testStore(t)
	remote := seedRemote()
	ctx := context.Background()

	engine := NewEngine(st, remote, nil)
	if err := engine.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	projects, err := st.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 1 || projects[0].ServerID != "rp-1" || projects[0].Status != models.StatusSynced {
		t.Fatalf("unexpected projects: %+v", projects)
	}

	tasks, err := st.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	// The task's project fk must point at the imported local row, not
	// the server id.
	if tasks[0].ProjectID != projects[0].ID {
		t.Fatalf("task project fk not remapped: %+v", tasks[0])
	}

	assocs, err := st.ListContextTasks(ctx)
	if err != nil {
		t.Fatalf("list associations: %v", err)
	}
	if len(assocs) != 1 {
		t.Fatalf("expected 1 association, got %d", len(assocs))
	}
	if assocs[0].LocalTaskID != tasks[0].ID {
		t.Fatalf("association task fk not remapped: %+v", assocs[0])
	}
	if assocs[0].ServerContextID != "rc-1" || assocs[0].ServerTaskID != "rt-1" {
		t.Fatalf("association server ids missing: %+v", assocs[0])
	}
}

func TestInitialSyncIsIdempotent(t *testing.T) {
	st := testStore(t)
	remote := seedRemote()
	ctx := context.Background()

	engine := NewEngine(st, remote, nil)
	if err := engine.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}

	before, err := st.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}

	if err := engine.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}

	after, err := st.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("row count changed: %d -> %d", len(before), len(after))
	}
	if after[0].Version != before[0].Version {
		t.Fatalf("version changed without a remote change: %d -> %d", before[0].Version, after[0].Version)
	}
}

func TestInitialSyncBumpsVersionOnRemoteChange(t *testing.T) {
	st := testStore(t)
	remote := seedRemote()
	ctx := context.Background()

	engine := NewEngine(st, remote, nil)
	if err := engine.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}

	remote.projects[0].Name = "Errands"
	if err := engine.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}

	projects, err := st.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if projects[0].Name != "Errands" {
		t.Fatalf("expected remote name applied, got %q", projects[0].Name)
	}
	if projects[0].Version != 2 {
		t.Fatalf("expected version 2 after remote change, got %d", projects[0].Version)
	}
}

func TestInitialSyncPreservesUnsyncedLocalRows(t *testing.T) {
	st := testStore(t)
	remote := seedRemote()
	ctx := context.Background()

	local, _, err := st.CreateProjectWithTransaction(ctx, "Offline only")
	if err != nil {
		t.Fatalf("create local project: %v", err)
	}

	engine := NewEngine(st, remote, nil)
	if err := engine.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	projects, err := st.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected remote and local project, got %d", len(projects))
	}

	got, err := st.GetProject(ctx, local.ID)
	if err != nil {
		t.Fatalf("get local project: %v", err)
	}
	if got == nil || got.Status != models.StatusPending {
		t.Fatalf("local unsynced project lost or altered: %+v", got)
	}
}

func TestInitialSyncAbortsOnFetchError(t *testing.T) {
	st := testStore(t)
	remote := seedRemote()
	remote.listTasksErr = errors.New("backend exploded")
	ctx := context.Background()

	engine := NewEngine(st, remote, nil)
	err := engine.Run(ctx)

	var aborted *SyncAbortedError
	if !errors.As(err, &aborted) {
		t.Fatalf("expected SyncAbortedError, got %v", err)
	}

	projects, err := st.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 0 {
		t.Fatalf("expected no partial import, got %d projects", len(projects))
	}
}

func TestInitialSyncRollsBackOnUnresolvableDependency(t *testing.T) {
	st := testStore(t)
	remote := seedRemote()
	// Association references a context the remote never returned.
	remote.associations[0].ContextID = "rc-ghost"
	ctx := context.Background()

	engine := NewEngine(st, remote, nil)
	err := engine.Run(ctx)

	var aborted *SyncAbortedError
	if !errors.As(err, &aborted) {
		t.Fatalf("expected SyncAbortedError, got %v", err)
	}
	var missing *MissingDependencyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingDependencyError cause, got %v", err)
	}

	// The earlier table merges must have rolled back with it.
	projects, listErr := st.ListProjects(ctx)
	if listErr != nil {
		t.Fatalf("list projects: %v", listErr)
	}
	if len(projects) != 0 {
		t.Fatalf("expected rollback of merged projects, got %d", len(projects))
	}
}

func TestInitialSyncSkipsLocallyDeletedRows(t *testing.T) {
	st := testStore(t)
	remote := seedRemote()
	ctx := context.Background()

	engine := NewEngine(st, remote, nil)
	if err := engine.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}

	contexts, err := st.ListContexts(ctx)
	if err != nil {
		t.Fatalf("list contexts: %v", err)
	}
	if _, err := st.DeleteContextWithTransaction(ctx, contexts[0]); err != nil {
		t.Fatalf("delete context: %v", err)
	}

	// A re-run while the delete is still queued must not resurrect the
	// soft-deleted row.
	if err := engine.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	contexts, err = st.ListContexts(ctx)
	if err != nil {
		t.Fatalf("list contexts: %v", err)
	}
	if len(contexts) != 0 {
		t.Fatalf("soft-deleted context resurrected: %+v", contexts)
	}
}

func TestValidateRegistryOrder(t *testing.T) {
	if err := validateRegistry(registry()); err != nil {
		t.Fatalf("registry order invalid: %v", err)
	}

	bad := []tableSync{
		{table: models.TableTasks, dependsOn: []string{models.TableProjects}},
		{table: models.TableProjects},
	}
	if err := validateRegistry(bad); err == nil {
		t.Fatal("expected out-of-order registry to fail validation")
	}
}
