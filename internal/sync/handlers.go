package sync

import (
	"context"
	"fmt"

	"tasksync/internal/api"
	"tasksync/internal/models"
	"tasksync/internal/store"
)

// entityHandler binds one entity kind to its remote operations and the
// local writes that follow them. The processor picks the handler by the
// transaction's entityType tag.
type entityHandler interface {
	// Create performs the remote create and returns the server id.
	Create(ctx context.Context, txn models.Transaction) (string, error)
	// CommitCreate applies the server id to the local row inside the
	// same atomic unit that marks the transaction committed.
	CommitCreate(ctx context.Context, tx *store.Tx, entityID, serverID string) error
	// Update performs the remote update for an update transaction.
	Update(ctx context.Context, txn models.Transaction) error
	// CommitUpdate records the server-confirmed update locally.
	CommitUpdate(ctx context.Context, tx *store.Tx, entityID string) error
	// Delete performs the remote delete for a previously synced row.
	Delete(ctx context.Context, serverID string) error
	// PurgeRow physically removes the local row once its delete
	// transaction has committed.
	PurgeRow(ctx context.Context, tx *store.Tx, entityID string) error
}

func newHandlers(st *store.Store, remote Remote) map[string]entityHandler {
	return map[string]entityHandler{
		models.TableProjects:     &projectHandler{remote: remote},
		models.TableContexts:     &contextHandler{remote: remote},
		models.TableTasks:        &taskHandler{store: st, remote: remote},
		models.TableContextTasks: &contextTaskHandler{store: st, remote: remote},
	}
}

func decodeAs[T any](txn models.Transaction) (*T, error) {
	payload, err := models.DecodePayload(txn)
	if err != nil {
		return nil, err
	}
	typed, ok := payload.(*T)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T for %s %s", payload, txn.EntityType, txn.Type)
	}
	return typed, nil
}

type projectHandler struct {
	remote Remote
}

func (h *projectHandler) Create(ctx context.Context, txn models.Transaction) (string, error) {
	payload, err := decodeAs[models.CreateProjectPayload](txn)
	if err != nil {
		return "", err
	}
	created, err := h.remote.CreateProject(ctx, api.ProjectCreateRequest{Name: payload.Name})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (h *projectHandler) CommitCreate(ctx context.Context, tx *store.Tx, entityID, serverID string) error {
	return tx.MarkProjectSynced(ctx, entityID, serverID)
}

func (h *projectHandler) Update(ctx context.Context, txn models.Transaction) error {
	return fmt.Errorf("projects do not support update transactions")
}

func (h *projectHandler) CommitUpdate(ctx context.Context, tx *store.Tx, entityID string) error {
	return fmt.Errorf("projects do not support update transactions")
}

func (h *projectHandler) Delete(ctx context.Context, serverID string) error {
	return h.remote.DeleteProject(ctx, serverID)
}

func (h *projectHandler) PurgeRow(ctx context.Context, tx *store.Tx, entityID string) error {
	return tx.DeleteProjectRow(ctx, entityID)
}

type contextHandler struct {
	remote Remote
}

func (h *contextHandler) Create(ctx context.Context, txn models.Transaction) (string, error) {
	payload, err := decodeAs[models.CreateContextPayload](txn)
	if err != nil {
		return "", err
	}
	created, err := h.remote.CreateContext(ctx, api.ContextCreateRequest{Name: payload.Name})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (h *contextHandler) CommitCreate(ctx context.Context, tx *store.Tx, entityID, serverID string) error {
	return tx.MarkContextSynced(ctx, entityID, serverID)
}

func (h *contextHandler) Update(ctx context.Context, txn models.Transaction) error {
	return fmt.Errorf("contexts do not support update transactions")
}

func (h *contextHandler) CommitUpdate(ctx context.Context, tx *store.Tx, entityID string) error {
	return fmt.Errorf("contexts do not support update transactions")
}

func (h *contextHandler) Delete(ctx context.Context, serverID string) error {
	return h.remote.DeleteContext(ctx, serverID)
}

func (h *contextHandler) PurgeRow(ctx context.Context, tx *store.Tx, entityID string) error {
	return tx.DeleteContextRow(ctx, entityID)
}

type taskHandler struct {
	store  store.EntityReader
	remote Remote
}

func (h *taskHandler) Create(ctx context.Context, txn models.Transaction) (string, error) {
	payload, err := decodeAs[models.CreateTaskPayload](txn)
	if err != nil {
		return "", err
	}

	req := api.TaskCreateRequest{Name: payload.Name, Priority: payload.Priority}
	if payload.ProjectID != "" {
		// Resolve the project's server id fresh from the store, not
		// from the payload captured at creation time.
		project, err := h.store.GetProject(ctx, payload.ProjectID)
		if err != nil {
			return "", err
		}
		if project == nil || project.ServerID == "" {
			return "", &MissingDependencyError{
				EntityType: models.TableTasks,
				EntityID:   txn.EntityID,
				Missing:    "project server id",
			}
		}
		req.ProjectID = project.ServerID
	}

	created, err := h.remote.CreateTask(ctx, req)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (h *taskHandler) CommitCreate(ctx context.Context, tx *store.Tx, entityID, serverID string) error {
	return tx.MarkTaskSynced(ctx, entityID, serverID)
}

func (h *taskHandler) Update(ctx context.Context, txn models.Transaction) error {
	payload, err := decodeAs[models.UpdateTaskPriorityPayload](txn)
	if err != nil {
		return err
	}

	task, err := h.store.GetTask(ctx, txn.EntityID)
	if err != nil {
		return err
	}
	if task == nil || task.ServerID == "" {
		return &MissingDependencyError{
			EntityType: models.TableTasks,
			EntityID:   txn.EntityID,
			Missing:    "task server id",
		}
	}

	_, err = h.remote.UpdateTask(ctx, task.ServerID, api.TaskUpdateRequest{Priority: &payload.Priority})
	return err
}

func (h *taskHandler) CommitUpdate(ctx context.Context, tx *store.Tx, entityID string) error {
	return tx.BumpTaskVersion(ctx, entityID)
}

func (h *taskHandler) Delete(ctx context.Context, serverID string) error {
	return h.remote.DeleteTask(ctx, serverID)
}

func (h *taskHandler) PurgeRow(ctx context.Context, tx *store.Tx, entityID string) error {
	return tx.DeleteTaskRow(ctx, entityID)
}

type contextTaskHandler struct {
	store  store.EntityReader
	remote Remote
}

// resolveEndpoints looks up both association endpoints at dispatch time.
// Both must already carry server ids; otherwise the association's create
// must wait for a later pass.
func (h *contextTaskHandler) resolveEndpoints(ctx context.Context, txn models.Transaction, payload *models.CreateContextTaskPayload) (serverContextID, serverTaskID string, err error) {
	c, err := h.store.GetContext(ctx, payload.LocalContextID)
	if err != nil {
		return "", "", err
	}
	if c == nil || c.ServerID == "" {
		return "", "", &MissingDependencyError{
			EntityType: models.TableContextTasks,
			EntityID:   txn.EntityID,
			Missing:    "context server id",
		}
	}

	t, err := h.store.GetTask(ctx, payload.LocalTaskID)
	if err != nil {
		return "", "", err
	}
	if t == nil || t.ServerID == "" {
		return "", "", &MissingDependencyError{
			EntityType: models.TableContextTasks,
			EntityID:   txn.EntityID,
			Missing:    "task server id",
		}
	}

	return c.ServerID, t.ServerID, nil
}

func (h *contextTaskHandler) Create(ctx context.Context, txn models.Transaction) (string, error) {
	payload, err := decodeAs[models.CreateContextTaskPayload](txn)
	if err != nil {
		return "", err
	}

	serverContextID, serverTaskID, err := h.resolveEndpoints(ctx, txn, payload)
	if err != nil {
		return "", err
	}

	created, err := h.remote.CreateAssociation(ctx, api.AssociationCreateRequest{
		ContextID: serverContextID,
		TaskID:    serverTaskID,
	})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (h *contextTaskHandler) CommitCreate(ctx context.Context, tx *store.Tx, entityID, serverID string) error {
	assoc, err := tx.GetContextTask(ctx, entityID)
	if err != nil {
		return err
	}
	if assoc == nil {
		return fmt.Errorf("association %s not found", entityID)
	}

	c, err := tx.GetContext(ctx, assoc.LocalContextID)
	if err != nil {
		return err
	}
	t, err := tx.GetTask(ctx, assoc.LocalTaskID)
	if err != nil {
		return err
	}
	if c == nil || t == nil {
		return fmt.Errorf("association %s endpoints missing", entityID)
	}

	return tx.MarkContextTaskSynced(ctx, entityID, serverID, c.ServerID, t.ServerID)
}

func (h *contextTaskHandler) Update(ctx context.Context, txn models.Transaction) error {
	return fmt.Errorf("associations do not support update transactions")
}

func (h *contextTaskHandler) CommitUpdate(ctx context.Context, tx *store.Tx, entityID string) error {
	return fmt.Errorf("associations do not support update transactions")
}

func (h *contextTaskHandler) Delete(ctx context.Context, serverID string) error {
	return h.remote.DeleteAssociation(ctx, serverID)
}

func (h *contextTaskHandler) PurgeRow(ctx context.Context, tx *store.Tx, entityID string) error {
	return tx.DeleteContextTaskRow(ctx, entityID)
}
