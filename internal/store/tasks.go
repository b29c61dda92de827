package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"tasksync/internal/models"
)

const taskColumns = "id, name, priority, project_id, status, server_id, created_at, version"

func scanTask(scanner interface{ Scan(dest ...any) error }) (*models.Task, error) {
	var t models.Task
	var projectID, serverID sql.NullString
	if err := scanner.Scan(&t.ID, &t.Name, &t.Priority, &projectID, &t.Status, &serverID, &t.CreatedAt, &t.Version); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.ProjectID = projectID.String
	t.ServerID = serverID.String
	return &t, nil
}

func listTasks(ctx context.Context, q dbtx, includeDeleted bool) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	if !includeDeleted {
		query += " WHERE status != 'deleted'"
	}
	query += " ORDER BY priority ASC, created_at DESC"

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListTasks returns all user-visible tasks, most urgent first, newest
// first within a priority level.
func (s *Store) ListTasks(ctx context.Context) ([]models.Task, error) {
	return listTasks(ctx, s.db, false)
}

func getTask(ctx context.Context, q dbtx, id string) (*models.Task, error) {
	row := q.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	return scanTask(row)
}

// GetTask returns a task by local id, including soft-deleted rows.
// Returns nil when no row matches.
func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return getTask(ctx, s.db, id)
}

// GetTask is the in-unit variant of Store.GetTask.
func (tx *Tx) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return getTask(ctx, tx.q, id)
}

// Tasks returns every task row, soft-deleted included.
func (tx *Tx) Tasks(ctx context.Context) ([]models.Task, error) {
	return listTasks(ctx, tx.q, true)
}

// ListTasksByContext returns visible tasks associated with a context.
func (s *Store) ListTasksByContext(ctx context.Context, contextID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.priority, t.project_id, t.status, t.server_id, t.created_at, t.version
		FROM tasks t
		JOIN contexts_tasks ct ON ct.local_task_id = t.id AND ct.status != 'deleted'
		WHERE ct.local_context_id = ? AND t.status != 'deleted'
		ORDER BY t.priority ASC, t.created_at DESC
	`, contextID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListTasksWithDetails returns visible tasks joined with their project
// name and the names of their associated contexts.
func (s *Store) ListTasksWithDetails(ctx context.Context) ([]models.TaskDetails, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.priority, t.project_id, t.status, t.server_id, t.created_at, t.version,
		       p.name, GROUP_CONCAT(c.name)
		FROM tasks t
		LEFT JOIN projects p ON p.id = t.project_id AND p.status != 'deleted'
		LEFT JOIN contexts_tasks ct ON ct.local_task_id = t.id AND ct.status != 'deleted'
		LEFT JOIN contexts c ON c.id = ct.local_context_id AND c.status != 'deleted'
		WHERE t.status != 'deleted'
		GROUP BY t.id
		ORDER BY t.priority ASC, t.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []models.TaskDetails
	for rows.Next() {
		var d models.TaskDetails
		var projectID, serverID, projectName, contextNames sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &d.Priority, &projectID, &d.Status, &serverID,
			&d.CreatedAt, &d.Version, &projectName, &contextNames); err != nil {
			return nil, err
		}
		d.ProjectID = projectID.String
		d.ServerID = serverID.String
		d.ProjectName = projectName.String
		if contextNames.String != "" {
			d.ContextNames = strings.Split(contextNames.String, ",")
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// CreateTaskWithTransaction inserts a pending task row, its create
// transaction, and one pending association row plus create transaction
// per linked context, all as one atomic unit. Returns the new task and
// the id of the task's own create transaction.
func (s *Store) CreateTaskWithTransaction(ctx context.Context, name string, priority int, projectID string, contextIDs []string) (models.Task, string, error) {
	now := time.Now().UnixMilli()
	task := models.Task{
		ID:        NewID(TaskIDPrefix),
		Name:      name,
		Priority:  priority,
		ProjectID: projectID,
		Status:    models.StatusPending,
		CreatedAt: now,
		Version:   1,
	}

	payload, err := models.EncodePayload(models.CreateTaskPayload{Name: name, Priority: priority, ProjectID: projectID})
	if err != nil {
		return models.Task{}, "", err
	}
	txn := models.Transaction{
		ID:         NewID(TransactionIDPrefix),
		Type:       models.TxCreate,
		EntityType: models.TableTasks,
		EntityID:   task.ID,
		Payload:    payload,
		Status:     models.TxPending,
		CreatedAt:  now,
	}

	err = s.WithTx(ctx, func(tx *Tx) error {
		if err := tx.InsertTask(ctx, task); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		for _, contextID := range contextIDs {
			assoc := models.ContextTask{
				ID:             NewID(ContextTaskIDPrefix),
				LocalContextID: contextID,
				LocalTaskID:    task.ID,
				Status:         models.StatusPending,
				CreatedAt:      now,
				Version:        1,
			}
			assocPayload, err := models.EncodePayload(models.CreateContextTaskPayload{
				LocalContextID: contextID,
				LocalTaskID:    task.ID,
			})
			if err != nil {
				return err
			}
			if err := tx.InsertContextTask(ctx, assoc); err != nil {
				return err
			}
			if err := tx.InsertTransaction(ctx, models.Transaction{
				ID:         NewID(TransactionIDPrefix),
				Type:       models.TxCreate,
				EntityType: models.TableContextTasks,
				EntityID:   assoc.ID,
				Payload:    assocPayload,
				Status:     models.TxPending,
				CreatedAt:  now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Task{}, "", err
	}
	return task, txn.ID, nil
}

// UpdateTaskPriorityWithTransaction applies the new priority locally and
// queues an update transaction, as one atomic unit.
func (s *Store) UpdateTaskPriorityWithTransaction(ctx context.Context, taskID string, priority int) (string, error) {
	payload, err := models.EncodePayload(models.UpdateTaskPriorityPayload{Priority: priority})
	if err != nil {
		return "", err
	}
	txn := models.Transaction{
		ID:         NewID(TransactionIDPrefix),
		Type:       models.TxUpdate,
		EntityType: models.TableTasks,
		EntityID:   taskID,
		Payload:    payload,
		Status:     models.TxPending,
		CreatedAt:  time.Now().UnixMilli(),
	}

	err = s.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.q.ExecContext(ctx, "UPDATE tasks SET priority = ? WHERE id = ?", priority, taskID); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, txn)
	})
	if err != nil {
		return "", err
	}
	return txn.ID, nil
}

// DeleteTaskWithTransaction soft-deletes the task and its associations,
// queueing a delete transaction for each, in one atomic unit.
func (s *Store) DeleteTaskWithTransaction(ctx context.Context, task models.Task) (string, error) {
	now := time.Now().UnixMilli()
	payload, err := models.EncodePayload(models.DeletePayload{ServerID: task.ServerID})
	if err != nil {
		return "", err
	}
	txn := models.Transaction{
		ID:         NewID(TransactionIDPrefix),
		Type:       models.TxDelete,
		EntityType: models.TableTasks,
		EntityID:   task.ID,
		Payload:    payload,
		Status:     models.TxPending,
		CreatedAt:  now,
	}

	err = s.WithTx(ctx, func(tx *Tx) error {
		assocs, err := tx.contextTasksForTask(ctx, task.ID)
		if err != nil {
			return err
		}
		for _, assoc := range assocs {
			if assoc.Status == models.StatusDeleted {
				continue
			}
			assocPayload, err := models.EncodePayload(models.DeletePayload{ServerID: assoc.ServerID})
			if err != nil {
				return err
			}
			if _, err := tx.q.ExecContext(ctx, "UPDATE contexts_tasks SET status = 'deleted' WHERE id = ?", assoc.ID); err != nil {
				return err
			}
			if err := tx.InsertTransaction(ctx, models.Transaction{
				ID:         NewID(TransactionIDPrefix),
				Type:       models.TxDelete,
				EntityType: models.TableContextTasks,
				EntityID:   assoc.ID,
				Payload:    assocPayload,
				Status:     models.TxPending,
				CreatedAt:  now,
			}); err != nil {
				return err
			}
		}

		if _, err := tx.q.ExecContext(ctx, "UPDATE tasks SET status = 'deleted' WHERE id = ?", task.ID); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, txn)
	})
	if err != nil {
		return "", err
	}
	return txn.ID, nil
}

// InsertTask inserts a task row.
func (tx *Tx) InsertTask(ctx context.Context, t models.Task) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO tasks (id, name, priority, project_id, status, server_id, created_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Priority, nullIfEmpty(t.ProjectID), t.Status, nullIfEmpty(t.ServerID), t.CreatedAt, t.Version)
	return err
}

// InsertTaskIgnore inserts a task row, ignoring local id conflicts.
func (tx *Tx) InsertTaskIgnore(ctx context.Context, t models.Task) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO tasks (id, name, priority, project_id, status, server_id, created_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Priority, nullIfEmpty(t.ProjectID), t.Status, nullIfEmpty(t.ServerID), t.CreatedAt, t.Version)
	return err
}

// UpdateTaskFromRemote applies the remote copy's mutable fields to the
// row matching serverID.
func (tx *Tx) UpdateTaskFromRemote(ctx context.Context, serverID, name string, priority int, projectID string, bump bool) error {
	query := "UPDATE tasks SET name = ?, priority = ?, project_id = ?, status = 'synced' WHERE server_id = ?"
	if bump {
		query = "UPDATE tasks SET name = ?, priority = ?, project_id = ?, status = 'synced', version = version + 1 WHERE server_id = ?"
	}
	_, err := tx.q.ExecContext(ctx, query, name, priority, nullIfEmpty(projectID), serverID)
	return err
}

// MarkTaskSynced records the server-assigned id after a committed create.
func (tx *Tx) MarkTaskSynced(ctx context.Context, id, serverID string) error {
	_, err := tx.q.ExecContext(ctx, `
		UPDATE tasks SET server_id = ?, status = 'synced', version = version + 1 WHERE id = ?
	`, serverID, id)
	return err
}

// BumpTaskVersion marks a server-confirmed update on a task row.
func (tx *Tx) BumpTaskVersion(ctx context.Context, id string) error {
	_, err := tx.q.ExecContext(ctx, "UPDATE tasks SET version = version + 1 WHERE id = ?", id)
	return err
}

// DeleteTaskRow physically removes a task row.
func (tx *Tx) DeleteTaskRow(ctx context.Context, id string) error {
	_, err := tx.q.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	return err
}
