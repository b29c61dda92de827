package sync

import (
	"context"

	"tasksync/internal/api"
)

// Remote is the backend surface the sync engine and processor consume:
// one list/create/delete set per entity kind. *api.Client satisfies it;
// tests substitute fakes.
type Remote interface {
	Ping(ctx context.Context) error

	ListProjects(ctx context.Context) ([]api.RemoteProject, error)
	CreateProject(ctx context.Context, req api.ProjectCreateRequest) (api.RemoteProject, error)
	DeleteProject(ctx context.Context, id string) error

	ListContexts(ctx context.Context) ([]api.RemoteContext, error)
	CreateContext(ctx context.Context, req api.ContextCreateRequest) (api.RemoteContext, error)
	DeleteContext(ctx context.Context, id string) error

	ListTasks(ctx context.Context) ([]api.RemoteTask, error)
	CreateTask(ctx context.Context, req api.TaskCreateRequest) (api.RemoteTask, error)
	UpdateTask(ctx context.Context, id string, req api.TaskUpdateRequest) (api.RemoteTask, error)
	DeleteTask(ctx context.Context, id string) error

	ListAssociations(ctx context.Context) ([]api.RemoteAssociation, error)
	CreateAssociation(ctx context.Context, req api.AssociationCreateRequest) (api.RemoteAssociation, error)
	DeleteAssociation(ctx context.Context, id string) error
}

var _ Remote = (*api.Client)(nil)
