package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tasksync/internal/api"
	"tasksync/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// fakeRemote is an in-memory backend. Create calls assign sequential
// server ids; List calls return whatever has been seeded or created.
type fakeRemote struct {
	mu     sync.Mutex
	nextID int

	pingErr          error
	listTasksErr     error
	createContextErr error

	projects     []api.RemoteProject
	contexts     []api.RemoteContext
	tasks        []api.RemoteTask
	associations []api.RemoteAssociation

	updates int
	deletes int
}

func (f *fakeRemote) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeRemote) setPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

func (f *fakeRemote) ListProjects(ctx context.Context) ([]api.RemoteProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.RemoteProject(nil), f.projects...), nil
}

func (f *fakeRemote) CreateProject(ctx context.Context, req api.ProjectCreateRequest) (api.RemoteProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := api.RemoteProject{ID: f.id("rp"), Name: req.Name, CreatedAt: time.Now()}
	f.projects = append(f.projects, p)
	return p, nil
}

func (f *fakeRemote) DeleteProject(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return nil
}

func (f *fakeRemote) ListContexts(ctx context.Context) ([]api.RemoteContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.RemoteContext(nil), f.contexts...), nil
}

func (f *fakeRemote) CreateContext(ctx context.Context, req api.ContextCreateRequest) (api.RemoteContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createContextErr != nil {
		return api.RemoteContext{}, f.createContextErr
	}
	c := api.RemoteContext{ID: f.id("rc"), Name: req.Name, CreatedAt: time.Now()}
	f.contexts = append(f.contexts, c)
	return c, nil
}

func (f *fakeRemote) DeleteContext(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return nil
}

func (f *fakeRemote) ListTasks(ctx context.Context) ([]api.RemoteTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listTasksErr != nil {
		return nil, f.listTasksErr
	}
	return append([]api.RemoteTask(nil), f.tasks...), nil
}

func (f *fakeRemote) CreateTask(ctx context.Context, req api.TaskCreateRequest) (api.RemoteTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := api.RemoteTask{
		ID:        f.id("rt"),
		Name:      req.Name,
		Priority:  req.Priority,
		ProjectID: req.ProjectID,
		CreatedAt: time.Now(),
	}
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *fakeRemote) UpdateTask(ctx context.Context, id string, req api.TaskUpdateRequest) (api.RemoteTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	for i, task := range f.tasks {
		if task.ID != id {
			continue
		}
		if req.Priority != nil {
			f.tasks[i].Priority = *req.Priority
		}
		return f.tasks[i], nil
	}
	return api.RemoteTask{}, fmt.Errorf("task %s not found", id)
}

func (f *fakeRemote) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return nil
}

func (f *fakeRemote) ListAssociations(ctx context.Context) ([]api.RemoteAssociation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.RemoteAssociation(nil), f.associations...), nil
}

func (f *fakeRemote) CreateAssociation(ctx context.Context, req api.AssociationCreateRequest) (api.RemoteAssociation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	assoc := api.RemoteAssociation{
		ID:        f.id("ra"),
		ContextID: req.ContextID,
		TaskID:    req.TaskID,
		CreatedAt: time.Now(),
	}
	f.associations = append(f.associations, assoc)
	return assoc, nil
}

func (f *fakeRemote) DeleteAssociation(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return nil
}

var _ Remote = (*fakeRemote)(nil)
